package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

// Key names a persisted selection.
type Key string

const (
	KeyRegion   Key = "region"
	KeyProducer Key = "producer"
)

// RecentLimit bounds the quick-pick history kept per key.
const RecentLimit = 5

var ErrUnknownKey = errors.New("unknown selection key")

// Keys lists every supported selection key.
var Keys = []Key{KeyRegion, KeyProducer}

func (k Key) IsValid() bool {
	return k == KeyRegion || k == KeyProducer
}

// Record is the persisted state of one key. An empty Value means unset.
type Record struct {
	Profile   string
	Key       Key
	Value     string
	Recent    []string
	UpdatedAt time.Time
}

// IsSet reports whether a value has been chosen.
func (r Record) IsSet() bool {
	return r.Value != ""
}

// WithValue returns a copy of r holding value, with value moved to the front of the
// history. Clearing the value leaves the history untouched.
func (r Record) WithValue(value string, at time.Time) Record {
	next := r
	next.Value = value
	next.UpdatedAt = at
	next.Recent = slices.Clone(r.Recent)
	if value == "" {
		return next
	}
	next.Recent = slices.DeleteFunc(next.Recent, func(v string) bool { return v == value })
	next.Recent = append([]string{value}, next.Recent...)
	if len(next.Recent) > RecentLimit {
		next.Recent = next.Recent[:RecentLimit]
	}
	return next
}

// Normalize canonicalizes raw for key: region and producer names resolve case-insensitively
// against their enumerations. Blank input clears the selection.
func Normalize(key Key, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	switch key {
	case KeyRegion:
		region, err := orderdomain.ParseRegion(raw)
		if err != nil {
			return "", err
		}
		return string(region), nil
	case KeyProducer:
		producer, err := capdomain.ParseProducer(raw)
		if err != nil {
			return "", err
		}
		return string(producer), nil
	default:
		return "", ErrUnknownKey
	}
}
