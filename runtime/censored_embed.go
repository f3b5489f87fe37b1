package runtime

import "embed"

//go:embed censored/*
var censoredFolder embed.FS

// LoadCensoredWords loads the embedded per-language blacklists.
func LoadCensoredWords() (*CensoredData, error) {
	return NewCensoredLoader(censoredFolder).LoadAll("censored")
}
