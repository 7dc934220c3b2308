package domain

// TaskType classifies what kind of change a request asks for.
// The set is closed; records with any other value are malformed.
type TaskType string

const (
	TypeCopyChange     TaskType = "copy_change"     // Text or copy modifications
	TypeSectionReorder TaskType = "section_reorder" // Reorder page sections
	TypeColorChange    TaskType = "color_change"    // Update color tokens/themes
	TypeSEOUpdate      TaskType = "seo_update"      // Modify SEO tags (title, meta, etc.)
	TypeComponentEdit  TaskType = "component_edit"  // General component changes
	TypeStyleChange    TaskType = "style_change"    // CSS/styling modifications
	TypeAddContent     TaskType = "add_content"     // Add new content to existing components
	TypeRemoveContent  TaskType = "remove_content"  // Remove content from components
)

// AllTaskTypes returns all valid task types.
func AllTaskTypes() []TaskType {
	return []TaskType{
		TypeCopyChange,
		TypeSectionReorder,
		TypeColorChange,
		TypeSEOUpdate,
		TypeComponentEdit,
		TypeStyleChange,
		TypeAddContent,
		TypeRemoveContent,
	}
}

// IsValid returns true if the type is a known value.
func (t TaskType) IsValid() bool {
	for _, known := range AllTaskTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// AutoCommitSafe reports whether changes of this type may ship without a human commit.
func (t TaskType) AutoCommitSafe() bool {
	switch t {
	case TypeCopyChange, TypeColorChange, TypeSEOUpdate:
		return true
	default:
		return false
	}
}

// Description returns a short human-readable summary of the type.
func (t TaskType) Description() string {
	switch t {
	case TypeCopyChange:
		return "Text or copy modifications"
	case TypeSectionReorder:
		return "Reorder page sections"
	case TypeColorChange:
		return "Update color tokens/themes"
	case TypeSEOUpdate:
		return "Modify SEO tags (title, meta, etc.)"
	case TypeComponentEdit:
		return "General component changes"
	case TypeStyleChange:
		return "CSS/styling modifications"
	case TypeAddContent:
		return "Add new content to existing components"
	case TypeRemoveContent:
		return "Remove content from components"
	default:
		return string(t)
	}
}

// baseRules apply to every task created by relay.
var baseRules = []string{
	"Do not change layout structure",
	"Do not remove existing functionality",
	"Preserve all existing imports",
}

// typeRules are appended to baseRules per task type.
var typeRules = map[TaskType][]string{
	TypeCopyChange: {
		"Only modify text content",
		"Do not touch styles or classes",
		"Keep the same element types",
	},
	TypeColorChange: {
		"Only modify color values",
		"Keep the same variable names",
		"Do not change other style properties",
	},
	TypeSEOUpdate: {
		"Only modify meta tags",
		"Keep valid HTML structure",
		"Do not change page content",
	},
	TypeSectionReorder: {
		"Only change component order",
		"Do not modify component internals",
		"Keep all props intact",
	},
	TypeStyleChange: {
		"Only modify style properties",
		"Keep responsive breakpoints",
		"Do not change structure",
	},
}

// DefaultRules returns the rules a new task of this type starts with.
func (t TaskType) DefaultRules() []string {
	rules := make([]string, 0, len(baseRules)+len(typeRules[t]))
	rules = append(rules, baseRules...)
	rules = append(rules, typeRules[t]...)
	return rules
}
