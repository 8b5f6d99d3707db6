package node

// Item is one unit of the input or output stream.
type Item struct {
	JSON       map[string]any `json:"json"`
	PairedItem *PairedItem    `json:"pairedItem,omitempty"`
}

// PairedItem points an output item back at the input item it came from.
type PairedItem struct {
	Item int `json:"item"`
}

// NewItems wraps raw JSON objects as input items.
func NewItems(objects []map[string]any) []Item {
	items := make([]Item, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			obj = map[string]any{}
		}
		items = append(items, Item{JSON: obj})
	}
	return items
}
