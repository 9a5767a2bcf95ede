package types

// ModuleRecord is a row of the module plugin table. ID is also the id of the
// root node of the module's plugin tree.
type ModuleRecord struct {
	ID         int64  `db:"cmsplugin_ptr_id" yaml:"id"`
	Name       string `db:"module_name" yaml:"name"`
	CategoryID *int64 `db:"module_category_id" yaml:"category_id,omitempty"`
}

type Category struct {
	ID   int64  `db:"id" yaml:"id"`
	Name string `db:"name" yaml:"name"`
}

// DeletedModule records a module removed by a deletion run.
type DeletedModule struct {
	ID         int64  `yaml:"id"`
	Name       string `yaml:"name"`
	ChildCount int    `yaml:"child_count"`
}

type DeleteCounts struct {
	Modules    int `yaml:"modules"`
	Children   int `yaml:"children"`
	Categories int `yaml:"categories"`
}

// Inventory is a read-only snapshot of the module tables.
type Inventory struct {
	Modules         int
	Children        int
	Categories      int
	EmptyCategories int
}
