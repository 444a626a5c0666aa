package crs

import (
	"math"
	"strings"
)

type Quantity string

const (
	QuantityAngle  Quantity = "angle"
	QuantityLength Quantity = "length"
	QuantityScale  Quantity = "scale"
)

// Unit is a canonical measurement unit. Factor converts a value in this unit
// to the base unit of its quantity: radian, metre or unity.
type Unit struct {
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Quantity Quantity `json:"quantity"`
	Factor   float64  `json:"factor"`
}

func (u *Unit) String() string { return u.Name }

// ToBase converts v from u into the base unit of its quantity.
func (u *Unit) ToBase(v float64) float64 { return v * u.Factor }

// FromBase converts v from the base unit into u.
func (u *Unit) FromBase(v float64) float64 { return v / u.Factor }

func (u *Unit) IsAngular() bool { return u.Quantity == QuantityAngle }
func (u *Unit) IsLinear() bool  { return u.Quantity == QuantityLength }

var (
	Metre     = &Unit{Name: "metre", Symbol: "m", Quantity: QuantityLength, Factor: 1}
	Kilometre = &Unit{Name: "kilometre", Symbol: "km", Quantity: QuantityLength, Factor: 1000}
	Foot      = &Unit{Name: "foot", Symbol: "ft", Quantity: QuantityLength, Factor: 0.3048}
	USFoot    = &Unit{Name: "US survey foot", Symbol: "ftUS", Quantity: QuantityLength, Factor: 1200.0 / 3937.0}
	Degree    = &Unit{Name: "degree", Symbol: "°", Quantity: QuantityAngle, Factor: math.Pi / 180}
	Radian    = &Unit{Name: "radian", Symbol: "rad", Quantity: QuantityAngle, Factor: 1}
	Grad      = &Unit{Name: "grad", Symbol: "gon", Quantity: QuantityAngle, Factor: math.Pi / 200}
	ArcMinute = &Unit{Name: "arc-minute", Symbol: "'", Quantity: QuantityAngle, Factor: math.Pi / (180 * 60)}
	ArcSecond = &Unit{Name: "arc-second", Symbol: "\"", Quantity: QuantityAngle, Factor: math.Pi / (180 * 3600)}
	Unity     = &Unit{Name: "unity", Symbol: "", Quantity: QuantityScale, Factor: 1}
)

var unitGrammar = map[string]*Unit{
	"metre": Metre, "meter": Metre, "m": Metre, "metres": Metre, "meters": Metre,
	"kilometre": Kilometre, "kilometer": Kilometre, "km": Kilometre,
	"foot": Foot, "feet": Foot, "ft": Foot,
	"us-foot": USFoot, "us-ft": USFoot, "ftus": USFoot, "us survey foot": USFoot,
	"degree": Degree, "degrees": Degree, "deg": Degree, "°": Degree,
	"radian": Radian, "radians": Radian, "rad": Radian,
	"grad": Grad, "gon": Grad, "grads": Grad,
	"arc-minute": ArcMinute, "arcminute": ArcMinute,
	"arc-second": ArcSecond, "arcsecond": ArcSecond,
	"unity": Unity, "scale": Unity, "1": Unity,
}

func normalizeUnitToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// parseUnit interprets a token with the canonical unit grammar.
func parseUnit(token string) (*Unit, error) {
	if u, ok := unitGrammar[normalizeUnitToken(token)]; ok {
		return u, nil
	}
	return nil, ErrorUnknownUnit(token)
}

// ResolveUnit returns the cached unit for the token, interpreting it on first use.
func (r *resolver) ResolveUnit(token string) (*Unit, error) {
	key := normalizeUnitToken(token)
	if u, ok := r.cache.units.Lookup(key); ok {
		return u, nil
	}
	u, err := parseUnit(token)
	if err != nil {
		return nil, err
	}
	return r.cache.units.Store(key, u), nil
}
