package domain

import (
	"fmt"
	"strings"
)

type BloodType string

const (
	APositive  BloodType = "A+"
	ANegative  BloodType = "A-"
	BPositive  BloodType = "B+"
	BNegative  BloodType = "B-"
	ABPositive BloodType = "AB+"
	ABNegative BloodType = "AB-"
	OPositive  BloodType = "O+"
	ONegative  BloodType = "O-"
)

var BloodTypes = []BloodType{APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative}

func ParseBloodType(s string) (BloodType, error) {
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch {
	case strings.HasSuffix(v, "POS"):
		v = strings.TrimSuffix(v, "POS") + "+"
	case strings.HasSuffix(v, "NEG"):
		v = strings.TrimSuffix(v, "NEG") + "-"
	}
	for _, bt := range BloodTypes {
		if string(bt) == v {
			return bt, nil
		}
	}
	return "", NewValidationError("blood_type", fmt.Sprintf("unknown blood type %q", s))
}

func (b BloodType) Valid() bool {
	for _, known := range BloodTypes {
		if b == known {
			return true
		}
	}
	return false
}

type Component string

const (
	WholeBlood Component = "whole_blood"
	RedCells   Component = "red_cells"
	Plasma     Component = "plasma"
	Platelets  Component = "platelets"
)

var Components = []Component{WholeBlood, RedCells, Plasma, Platelets}

var componentAliases = map[string]Component{
	"whole_blood":        WholeBlood,
	"wholeblood":         WholeBlood,
	"whole blood":        WholeBlood,
	"blood":              WholeBlood,
	"sangue":             WholeBlood,
	"red_cells":          RedCells,
	"redcells":           RedCells,
	"red cells":          RedCells,
	"red blood cells":    RedCells,
	"globulos":           RedCells,
	"globulos vermelhos": RedCells,
	"plasma":             Plasma,
	"platelets":          Platelets,
	"plaquetas":          Platelets,
}

// ParseComponent accepts the canonical names plus the legacy labels used by
// older clients, ignoring case and surrounding whitespace.
func ParseComponent(s string) (Component, error) {
	if c, ok := componentAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", NewValidationError("component", fmt.Sprintf("unknown component %q", s))
}

func (c Component) Valid() bool {
	for _, known := range Components {
		if c == known {
			return true
		}
	}
	return false
}

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "masculino":
		return Male, nil
	case "female", "f", "feminino":
		return Female, nil
	case "other", "o", "outro":
		return Other, nil
	}
	return "", NewValidationError("gender", fmt.Sprintf("unknown gender %q", s))
}

type OrderState string

const (
	OrderActive    OrderState = "active"
	OrderConcluded OrderState = "concluded"
	OrderCancelled OrderState = "cancelled"
	OrderRejected  OrderState = "rejected"
)

func ParseOrderState(s string) (OrderState, error) {
	switch st := OrderState(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderActive, OrderConcluded, OrderCancelled, OrderRejected:
		return st, nil
	}
	return "", NewValidationError("state", fmt.Sprintf("unknown order state %q", s))
}

// Terminal reports whether no transition may leave the state.
func (s OrderState) Terminal() bool {
	return s != OrderActive
}
