package menu

import "fmt"

// Validate checks the menu for structural problems before the rest of
// the system is allowed to see it. Duplicate item ids are rejected here
// rather than silently resolved to the first occurrence.
func (m *Menu) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("menu id is required")
	}
	if m.Name == "" {
		return fmt.Errorf("menu name is required")
	}
	if len(m.Categories) == 0 {
		return fmt.Errorf("menu must have at least one category")
	}

	seen := make(map[string]string, 16)
	for _, cat := range m.Categories {
		if err := validateCategory(&cat); err != nil {
			return err
		}
		for _, item := range cat.Items {
			if prev, ok := seen[item.ID]; ok {
				return fmt.Errorf("duplicate item id %q in categories %q and %q", item.ID, prev, cat.ID)
			}
			seen[item.ID] = cat.ID
		}
	}
	return nil
}

func validateCategory(cat *Category) error {
	if cat.ID == "" {
		return fmt.Errorf("category id is required")
	}
	if cat.Name == "" {
		return fmt.Errorf("category %q name is required", cat.ID)
	}
	if len(cat.Items) == 0 {
		return fmt.Errorf("category %q must have at least one item", cat.ID)
	}
	for _, item := range cat.Items {
		if err := validateItem(&item); err != nil {
			return fmt.Errorf("category %q: %w", cat.ID, err)
		}
	}
	return nil
}

func validateItem(item *Item) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("menu item %q name is required", item.ID)
	}
	if item.Price < 0 {
		return fmt.Errorf("menu item %q price must be non-negative", item.ID)
	}
	for _, group := range item.Modifiers {
		if group.Name == "" {
			return fmt.Errorf("menu item %q has a modifier group without a name", item.ID)
		}
		if len(group.Options) == 0 {
			return fmt.Errorf("menu item %q modifier group %q must have at least one option", item.ID, group.Name)
		}
		for _, opt := range group.Options {
			if opt.Name == "" {
				return fmt.Errorf("menu item %q modifier group %q has an option without a name", item.ID, group.Name)
			}
		}
	}
	return nil
}
