package model

// Book is a single entry of the shelf. Optional fields are nil when the
// book was added without them.
type Book struct {
	ID            string  `json:"id"`
	Title         *string `json:"title,omitempty"`
	PublishedYear *int    `json:"publishedYear,omitempty"`
	AuthorID      *string `json:"authorId,omitempty"`
}

// Author is static seed data. The books written by an author are derived
// from Book.AuthorID and never stored on the author itself.
type Author struct {
	ID   string  `json:"id"`
	Name *string `json:"name,omitempty"`
}

// NewBook carries the arguments of the addBook mutation.
type NewBook struct {
	Title         *string
	PublishedYear *int
	AuthorID      *string
}
