package models

// Category is a coarse application classification.
type Category string

const (
	CategoryCode        Category = "Code"
	CategoryCommunicate Category = "Communicate"
	CategoryCreate      Category = "Create"
	CategoryBrowsing    Category = "Browsing"
	CategoryUtility     Category = "Utility"
	CategoryOther       Category = "Other"
)

// AllCategories lists categories in classification priority order.
var AllCategories = []Category{
	CategoryCode,
	CategoryCommunicate,
	CategoryCreate,
	CategoryBrowsing,
	CategoryUtility,
	CategoryOther,
}
