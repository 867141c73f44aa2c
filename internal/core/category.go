package core

// Category is one entry of the fixed category table.
type Category struct {
	ID    string
	Name  string
	Color string
}

const (
	DefaultCategoryID = "cat1"
	// AllCategories is the filter value that disables the category predicate.
	AllCategories = "all"
)

// Uncategorized stands in for any category id missing from the table.
var Uncategorized = Category{ID: "", Name: "Uncategorized", Color: "#94a3b8"}

var categories = []Category{
	{ID: "cat1", Name: "Groceries", Color: "#4ade80"},
	{ID: "cat2", Name: "Utilities", Color: "#60a5fa"},
	{ID: "cat3", Name: "Transport", Color: "#facc15"},
	{ID: "cat4", Name: "Entertainment", Color: "#f87171"},
	{ID: "cat5", Name: "Dining Out", Color: "#fb923c"},
	{ID: "cat6", Name: "Shopping", Color: "#c084fc"},
	{ID: "cat7", Name: "Health", Color: "#2dd4bf"},
	{ID: "cat8", Name: "Other", Color: "#94a3b8"},
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}()

// Categories returns the table in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func LookupCategory(id string) (Category, bool) {
	c, ok := categoryIndex[id]
	return c, ok
}

// CategoryFor resolves id, falling back to Uncategorized.
func CategoryFor(id string) Category {
	if c, ok := categoryIndex[id]; ok {
		return c
	}
	return Uncategorized
}
