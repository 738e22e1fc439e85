package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidInput = errors.New("invalid booking input")

// BookingInput holds the values a user enters in the booking form.
type BookingInput struct {
	DepositType         string `json:"deposit_type"`
	CustomerType        string `json:"customer_type"`
	ReservedRoomType    string `json:"reserved_room_type"`
	MarketSegment       string `json:"market_segment"`
	Country             string `json:"country"`
	Meal                string `json:"meal"`
	DistributionChannel string `json:"distribution_channel"`

	LeadTime                    int     `json:"lead_time"`
	ADR                         float64 `json:"adr"`
	TotalOfSpecialRequests      int     `json:"total_of_special_requests"`
	ArrivalDateDayOfMonth       int     `json:"arrival_date_day_of_month"`
	ArrivalDateWeekNumber       int     `json:"arrival_date_week_number"`
	StaysInWeekNights           int     `json:"stays_in_week_nights"`
	StaysInWeekendNights        int     `json:"stays_in_weekend_nights"`
	RequiredCarParkingSpaces    int     `json:"required_car_parking_spaces"`
	Adults                      int     `json:"adults"`
	Children                    int     `json:"children"`
	Babies                      int     `json:"babies"`
	PreviousCancellations       int     `json:"previous_cancellations"`
	PreviousBookingsNotCanceled int     `json:"previous_bookings_not_canceled"`
	IsRepeatedGuest             int     `json:"is_repeated_guest"`
}

// DefaultInput returns the values the form starts with.
func DefaultInput() BookingInput {
	in := BookingInput{}
	for _, f := range fields {
		_ = in.Set(f.Name, f.DefaultString())
	}
	return in
}

// Clamp pulls every value into its field domain the way the form widgets do:
// numbers are clamped to [min, max], unknown options fall back to the default.
func (in *BookingInput) Clamp() {
	for _, f := range fields {
		switch f.Kind {
		case KindChoice:
			p := in.choiceRef(f.Name)
			if !f.HasOption(*p) {
				*p = f.Options[0]
			}
		case KindInt, KindFlag:
			p := in.intRef(f.Name)
			*p = clampInt(*p, int(f.Min), int(f.Max))
		case KindFloat:
			in.ADR = clampFloat(in.ADR, f.Min, f.Max)
		}
	}
}

// Validate reports the first value outside its field domain.
func (in BookingInput) Validate() error {
	for _, f := range fields {
		switch f.Kind {
		case KindChoice:
			v := *in.choiceRef(f.Name)
			if !f.HasOption(v) {
				return fmt.Errorf("%w: %s=%q is not one of %s", ErrInvalidInput, f.Name, v, strings.Join(f.Options, ", "))
			}
		case KindInt, KindFlag:
			v := *in.intRef(f.Name)
			if float64(v) < f.Min || float64(v) > f.Max {
				return fmt.Errorf("%w: %s=%d out of range [%g, %g]", ErrInvalidInput, f.Name, v, f.Min, f.Max)
			}
		case KindFloat:
			if math.IsNaN(in.ADR) || in.ADR < f.Min || in.ADR > f.Max {
				return fmt.Errorf("%w: %s=%g out of range [%g, %g]", ErrInvalidInput, f.Name, in.ADR, f.Min, f.Max)
			}
		}
	}
	return nil
}

// Set parses raw and assigns it to the named field. Range checks are left to
// Clamp and Validate.
func (in *BookingInput) Set(name, raw string) error {
	f, ok := FieldByName(name)
	if !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
	}
	raw = strings.TrimSpace(raw)

	switch f.Kind {
	case KindChoice:
		*in.choiceRef(name) = raw
	case KindInt, KindFlag:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, name)
		}
		*in.intRef(name) = v
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a number", ErrInvalidInput, name)
		}
		in.ADR = v
	}
	return nil
}

// Get returns the named field formatted for a form control.
func (in BookingInput) Get(name string) string {
	f, ok := FieldByName(name)
	if !ok {
		return ""
	}
	switch f.Kind {
	case KindChoice:
		return *in.choiceRef(name)
	case KindFloat:
		return strconv.FormatFloat(in.ADR, 'f', -1, 64)
	default:
		return strconv.Itoa(*in.intRef(name))
	}
}

func (in *BookingInput) choiceRef(name string) *string {
	switch name {
	case FieldDepositType:
		return &in.DepositType
	case FieldCustomerType:
		return &in.CustomerType
	case FieldReservedRoomType:
		return &in.ReservedRoomType
	case FieldMarketSegment:
		return &in.MarketSegment
	case FieldCountry:
		return &in.Country
	case FieldMeal:
		return &in.Meal
	case FieldDistributionChannel:
		return &in.DistributionChannel
	}
	panic("models: no choice field " + name)
}

func (in *BookingInput) intRef(name string) *int {
	switch name {
	case FieldLeadTime:
		return &in.LeadTime
	case FieldTotalOfSpecialRequests:
		return &in.TotalOfSpecialRequests
	case FieldArrivalDateDayOfMonth:
		return &in.ArrivalDateDayOfMonth
	case FieldArrivalDateWeekNumber:
		return &in.ArrivalDateWeekNumber
	case FieldStaysInWeekNights:
		return &in.StaysInWeekNights
	case FieldStaysInWeekendNights:
		return &in.StaysInWeekendNights
	case FieldRequiredCarParkingSpaces:
		return &in.RequiredCarParkingSpaces
	case FieldAdults:
		return &in.Adults
	case FieldChildren:
		return &in.Children
	case FieldBabies:
		return &in.Babies
	case FieldPreviousCancellations:
		return &in.PreviousCancellations
	case FieldPreviousBookingsNotCanceled:
		return &in.PreviousBookingsNotCanceled
	case FieldIsRepeatedGuest:
		return &in.IsRepeatedGuest
	}
	panic("models: no integer field " + name)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
