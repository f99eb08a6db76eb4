package postgres

import (
	"encoding/json"

	"example.com/galaxyfit/internal/domain"
)

// Set lists and cardio payloads are stored as serialized JSON text alongside
// the owning row. Malformed stored payloads surface as decode errors rather
// than being dropped.

func encodeSets(sets []domain.TemplateSet) (string, error) {
	if sets == nil {
		sets = []domain.TemplateSet{}
	}
	body, err := json.Marshal(sets)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func decodeSets(raw string) ([]domain.TemplateSet, error) {
	if raw == "" {
		return []domain.TemplateSet{}, nil
	}
	var sets []domain.TemplateSet
	if err := json.Unmarshal([]byte(raw), &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func encodeCardio(cardio *domain.CardioSession) (interface{}, error) {
	if cardio == nil {
		return nil, nil
	}
	body, err := json.Marshal(cardio)
	if err != nil {
		return nil, err
	}
	return string(body), nil
}

func decodeCardio(raw *string) (*domain.CardioSession, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var cardio domain.CardioSession
	if err := json.Unmarshal([]byte(*raw), &cardio); err != nil {
		return nil, err
	}
	return &cardio, nil
}
