package store

import (
	"github.com/samber/lo"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// SeedAuthors returns the authors every fresh store starts with.
func SeedAuthors() []model.Author {
	return []model.Author{
		{ID: "1", Name: lo.ToPtr("shubham khatik")},
		{ID: "2", Name: lo.ToPtr("Akshay gupta")},
	}
}

// SeedBooks returns the books every fresh store starts with.
func SeedBooks() []model.Book {
	return []model.Book{
		{ID: "101", Title: lo.ToPtr("System Design"), PublishedYear: lo.ToPtr(2000), AuthorID: lo.ToPtr("1")},
		{ID: "102", Title: lo.ToPtr("frontend"), PublishedYear: lo.ToPtr(2010), AuthorID: lo.ToPtr("1")},
		{ID: "103", Title: lo.ToPtr("ramayana"), PublishedYear: lo.ToPtr(2020), AuthorID: lo.ToPtr("2")},
	}
}
