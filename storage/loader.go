package storage

import (
	"encoding/json"
	"errors"

	"github.com/kubex/rclink/storage/datastore"
	"github.com/kubex/rclink/storage/sql"
)

func Load(jsonBytes []byte) (Provider, error) {

	loader := struct {
		Provider      string
		Configuration *json.RawMessage
	}{}

	err := json.Unmarshal(jsonBytes, &loader)
	if err != nil {
		return nil, err
	}

	if loader.Configuration == nil {
		return nil, errors.New("missing configuration for storage provider '" + loader.Provider + "'")
	}

	switch loader.Provider {
	case sql.ProviderKey:
		return sql.FromJson(*loader.Configuration)
	case datastore.ProviderKey:
		return datastore.FromJson(*loader.Configuration)
	}

	return nil, errors.New("unable to load storage provider '" + loader.Provider + "'")
}
