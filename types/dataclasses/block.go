package dataclasses

// Block is a single row of the blocks table.
//
// swagger:model
type Block struct {
	// The unique identifier assigned by the storage
	// example: 1
	Id int64 `json:"id"`

	// The ordering key of the block
	// required: true
	// example: 5
	Number int64 `json:"number"`

	// The title of the block
	// example: "Genesis"
	Title string `json:"title"`

	// Free-form content of the block
	// example: "first block"
	Content string `json:"content"`
}

// BlockPatch carries the writable fields of a Block. A nil field was not
// submitted.
type BlockPatch struct {
	Number  *int64
	Title   *string
	Content *string
}

// Apply returns a copy of b with the submitted fields of p written over it.
func (p BlockPatch) Apply(b Block) Block {
	if p.Number != nil {
		b.Number = *p.Number
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Content != nil {
		b.Content = *p.Content
	}

	return b
}

// Block builds a fresh Block from p, omitted fields taking their zero value.
func (p BlockPatch) Block() Block {
	return p.Apply(Block{})
}
