package entity

// ItemType classifies what a farm holds.
type ItemType string

const (
	ItemAnimal  ItemType = "ANIMAL"
	ItemLand    ItemType = "LAND"
	ItemUtility ItemType = "UTILITY"
)

// ItemTypes lists every valid ItemType.
var ItemTypes = []ItemType{ItemAnimal, ItemLand, ItemUtility}

func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if t == v {
			return true
		}
	}
	return false
}

// FarmSummary is a farm as listed, without its items.
type FarmSummary struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Farm struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Items []Item `db:"-" json:"items"`
}

type Item struct {
	ID     int64    `db:"id" json:"id"`
	Type   ItemType `db:"type" json:"type"`
	Amount int      `db:"amount" json:"amount"`
}

// Balance is the wallet of a chat user as reported by the balance service.
type Balance struct {
	UserID  string  `json:"user_id"`
	Balance float64 `json:"balance"`
}
