package api

import (
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/equiptracker/internal/server/models"
)

var errInvalidPayload = errors.New("invalid JSON payload")

// decodeNewEntry reads a create payload. Fields are loosely typed: text
// fields accept any JSON scalar, and headsetOnSurrogate is read by
// truthiness.
func decodeNewEntry(body []byte) (models.NewEntry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return models.NewEntry{}, errInvalidPayload
	}

	return models.NewEntry{
		Name:               models.Deref(models.OptionalText(raw["name"])),
		Location:           models.OptionalText(raw["location"]),
		Robot:              models.OptionalText(raw["robot"]),
		Surrogate:          models.OptionalText(raw["surrogate"]),
		Headset:            models.Deref(models.OptionalText(raw["headset"])),
		HeadsetOnSurrogate: models.Truthy(raw["headsetOnSurrogate"]),
	}, nil
}
