package jsonfile

import (
	"strings"
)

// Provider reads roster seed files from a data directory.
type Provider struct {
	dataDirectory string
}

func New(dataDirectory string) *Provider {
	return &Provider{dataDirectory: dataDirectory}
}

func (p Provider) filePath(dataType, filename string) string {
	return strings.TrimRight(p.dataDirectory, "/") + "/" + dataType + "." + filename + ".json"
}
