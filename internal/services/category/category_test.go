package category

import (
	"testing"

	"github.com/typesteps/typesteps/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		app    string
		bundle string
		want   models.Category
	}{
		{"vscode", "Visual Studio Code", "", models.CategoryCode},
		{"slack", "Slack", "", models.CategoryCommunicate},
		{"unknown", "RandomApp42", "", models.CategoryOther},
		{"empty", "", "", models.CategoryOther},
		{"case insensitive", "XCODE", "", models.CategoryCode},
		{"jetbrains bundle", "Some IDE", "com.jetbrains.goland", models.CategoryCode},
		{"exact zed", "Zed", "", models.CategoryCode},
		{"mail exact", "Mail", "", models.CategoryCommunicate},
		{"mailchimp is not mail", "Mailchimp Helper", "", models.CategoryOther},
		{"arc exact", "Arc", "", models.CategoryBrowsing},
		{"arc not inside other names", "Archive Utility", "", models.CategoryUtility},
		{"figma", "Figma", "", models.CategoryCreate},
		{"browser bundle", "", "com.google.Chrome", models.CategoryBrowsing},
		{"finder", "Finder", "com.apple.finder", models.CategoryUtility},
		{"priority code before create", "Cursor", "com.todesktop.230313mzl4w4u92", models.CategoryCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.app, tt.bundle); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.app, tt.bundle, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for range 10 {
		if got := Classify("Visual Studio Code", ""); got != models.CategoryCode {
			t.Fatalf("Classify changed result: %v", got)
		}
	}
}

func TestClassifier_Caches(t *testing.T) {
	c, err := NewClassifier(2)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	if got := c.Classify("Slack", ""); got != models.CategoryCommunicate {
		t.Errorf("Classify(Slack) = %v", got)
	}
	if got := c.Classify("Slack", ""); got != models.CategoryCommunicate {
		t.Errorf("cached Classify(Slack) = %v", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Classify("Figma", "")
	c.Classify("Safari", "")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want capacity 2", c.Len())
	}
}

func TestNewClassifier_DefaultSize(t *testing.T) {
	c, err := NewClassifier(0)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	if got := c.Classify("Discord", ""); got != models.CategoryCommunicate {
		t.Errorf("Classify(Discord) = %v", got)
	}
}
