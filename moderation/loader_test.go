package moderation

import (
	"chat-hub/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)

	// Given two dictionaries sharing a word and a file to ignore
	files := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("badger\r\nsnake\n\n# comment\n")},
		"censored/fr.txt":    {Data: []byte("blaireau\nbadger\n")},
		"censored/README.md": {Data: []byte("not a dictionary")},
	}

	// When the directory is loaded
	data, err := NewCensoredLoader(files).LoadAll("censored")

	// Then words are unique and sorted
	req.NoError(err)
	req.Equal([]string{"badger", "blaireau", "snake"}, data.Words)
	req.Equal([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_Empty(t *testing.T) {
	req := require.New(t)
	files := fstest.MapFS{"censored/en.txt": {Data: []byte("\n\n")}}

	_, err := NewCensoredLoader(files).LoadAll("censored")

	req.ErrorIs(err, errors.ErrEmptyWords)
}
