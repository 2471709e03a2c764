package core

import "sort"

// Entity is the stable tag identifying a target table of the schema contract.
type Entity string

// Entities of the coffee-shop schema, in load dependency order.
const (
	EntityStaff           Entity = "staff"
	EntitySalesOutlet     Entity = "sales_outlet"
	EntityProduct         Entity = "product"
	EntityDate            Entity = "date"
	EntityGeneration      Entity = "generation"
	EntityPastryInventory Entity = "pastry_inventory"
	EntitySalesTarget     Entity = "sales_target"
	EntityCustomer        Entity = "customer"
	EntityReceipt         Entity = "receipt"
)

// ColumnType is the logical type of a column in the schema contract.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnDecimal
	ColumnDate
	ColumnTime
)

// Column describes one column of a table.
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	PrimaryKey bool
}

// Table describes one table of the schema contract.
type Table struct {
	Entity  Entity
	Name    string
	Columns []Column
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema is a set of tables keyed by entity tag.
type Schema struct {
	tables map[Entity]*Table
}

// NewSchema builds a schema from the given tables.
// A later table with the same entity replaces an earlier one.
func NewSchema(tables ...*Table) *Schema {
	s := &Schema{tables: make(map[Entity]*Table, len(tables))}
	for _, t := range tables {
		s.tables[t.Entity] = t
	}
	return s
}

// Table returns the table bound to the entity tag.
func (s *Schema) Table(e Entity) (*Table, bool) {
	t, ok := s.tables[e]
	return t, ok
}

// Entities returns all entity tags (sorted).
func (s *Schema) Entities() []Entity {
	out := make([]Entity, 0, len(s.tables))
	for e := range s.tables {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func text(name string) Column {
	return Column{Name: name, Type: ColumnText, Nullable: true}
}

func integer(name string) Column {
	return Column{Name: name, Type: ColumnInteger, Nullable: true}
}

func date(name string) Column {
	return Column{Name: name, Type: ColumnDate, Nullable: true}
}

func decimalColumn(name string) Column {
	return Column{Name: name, Type: ColumnDecimal, Nullable: true}
}

func key(c Column) Column {
	c.PrimaryKey = true
	c.Nullable = false
	return c
}

func required(c Column) Column {
	c.Nullable = false
	return c
}

// CoffeeSchema returns the fixed schema contract the loader and the reports depend on.
// The per-dialect DDL under internal/store/migrations must declare the same columns.
func CoffeeSchema() *Schema {
	return NewSchema(
		&Table{Entity: EntityStaff, Name: "staff", Columns: []Column{
			key(integer("staff_id")),
			text("first_name"),
			text("last_name"),
			text("position"),
			date("start_date"),
			text("location"),
		}},
		&Table{Entity: EntitySalesOutlet, Name: "sales_outlet", Columns: []Column{
			key(integer("sales_outlet_id")),
			text("sales_outlet_type"),
			integer("store_square_feet"),
			text("store_address"),
			text("store_city"),
			text("store_state_province"),
			text("store_telephone"),
			text("store_postal_code"),
			text("store_longitude"),
			text("store_latitude"),
			integer("manager"),
			text("neighborhood"),
		}},
		&Table{Entity: EntityProduct, Name: "product", Columns: []Column{
			key(integer("product_id")),
			text("product_group"),
			text("product_category"),
			text("product_type"),
			text("product"),
			text("product_description"),
			text("unit_of_measure"),
			text("current_wholesale_price"),
			decimalColumn("current_retail_price"),
			text("tax_exempt_yn"),
			text("promo_yn"),
			text("new_product_yn"),
		}},
		&Table{Entity: EntityDate, Name: "date", Columns: []Column{
			key(date("transaction_date")),
			text("date_id"),
			text("week_id"),
			text("week_desc"),
			text("month_id"),
			text("month_name"),
			text("quarter_id"),
			text("quarter_name"),
			integer("year_id"),
		}},
		&Table{Entity: EntityGeneration, Name: "generation", Columns: []Column{
			key(integer("birth_year")),
			text("generation"),
		}},
		&Table{Entity: EntityPastryInventory, Name: "pastry_inventory", Columns: []Column{
			key(integer("sales_outlet_id")),
			key(date("transaction_date")),
			key(integer("product_id")),
			integer("start_of_day"),
			integer("quantity_sold"),
			integer("waste"),
			text("waste_percent"),
		}},
		&Table{Entity: EntitySalesTarget, Name: "sales_target", Columns: []Column{
			key(integer("sales_outlet_id")),
			key(text("year_month")),
			integer("beans_goal"),
			integer("beverage_goal"),
			integer("food_goal"),
			integer("merchandise_goal"),
			integer("total_goal"),
		}},
		&Table{Entity: EntityCustomer, Name: "customer", Columns: []Column{
			key(integer("customer_id")),
			integer("home_store"),
			text("name"),
			text("email"),
			date("customer_since"),
			text("loyalty_card_number"),
			date("birthdate"),
			text("gender"),
			integer("birth_year"),
		}},
		&Table{Entity: EntityReceipt, Name: "receipt", Columns: []Column{
			key(integer("transaction_id")),
			key(date("transaction_date")),
			key(Column{Name: "transaction_time", Type: ColumnTime}),
			key(integer("sales_outlet_id")),
			integer("staff_id"),
			integer("customer_id"),
			text("instore_yn"),
			text("order"),
			integer("line_item_id"),
			required(integer("product_id")),
			required(integer("quantity")),
			text("line_item_amount"),
			text("unit_price"),
			text("promo_item_yn"),
		}},
	)
}
