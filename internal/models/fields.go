package models

import "strconv"

type FieldKind string

const (
	KindChoice FieldKind = "choice"
	KindInt    FieldKind = "int"
	KindFloat  FieldKind = "float"
	KindFlag   FieldKind = "flag"
)

// Field describes one form control: its label, kind, and domain.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Step    float64   `json:"step,omitempty"`
	Default any       `json:"default"`
}

// HasOption reports whether v is one of the field's options.
func (f Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

// DefaultString returns the default value in form encoding.
func (f Field) DefaultString() string {
	switch v := f.Default.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func choice(name, label string, options []string) Field {
	return Field{Name: name, Label: label, Kind: KindChoice, Options: options, Default: options[0]}
}

func integer(name, label string, lo, hi float64, def int) Field {
	return Field{Name: name, Label: label, Kind: KindInt, Min: lo, Max: hi, Step: 1, Default: def}
}

// fields is ordered the way the side panel shows it.
var fields = []Field{
	choice(FieldDepositType, "Deposit Type", DepositTypes),
	choice(FieldCustomerType, "Customer Type", CustomerTypes),
	choice(FieldReservedRoomType, "Reserved Room Type", ReservedRoomTypes),
	choice(FieldMarketSegment, "Market Segment", MarketSegments),
	choice(FieldCountry, "Country", Countries),
	choice(FieldMeal, "Meal", Meals),
	choice(FieldDistributionChannel, "Distribution Channel", DistributionChannels),

	integer(FieldLeadTime, "Lead Time (days)", 0, 600, 30),
	{Name: FieldADR, Label: "Average Daily Rate (ADR)", Kind: KindFloat, Min: 0, Max: 1000, Step: 1, Default: 100.0},
	integer(FieldTotalOfSpecialRequests, "Total Special Requests", 0, 5, 0),
	integer(FieldArrivalDateDayOfMonth, "Arrival Day of Month", 1, 31, 1),
	integer(FieldArrivalDateWeekNumber, "Arrival Week Number", 1, 53, 1),
	integer(FieldStaysInWeekNights, "Stays in Week Nights", 0, 30, 1),
	integer(FieldStaysInWeekendNights, "Stays in Weekend Nights", 0, 14, 0),
	integer(FieldRequiredCarParkingSpaces, "Required Car Parking Spaces", 0, 5, 0),
	integer(FieldAdults, "Adults", 0, 10, 2),
	integer(FieldChildren, "Children", 0, 5, 0),
	integer(FieldBabies, "Babies", 0, 5, 0),
	integer(FieldPreviousCancellations, "Previous Cancellations", 0, 10, 0),
	integer(FieldPreviousBookingsNotCanceled, "Previous Bookings Not Canceled", 0, 20, 0),

	{Name: FieldIsRepeatedGuest, Label: "Repeated Guest?", Kind: KindFlag, Options: []string{"0", "1"}, Min: 0, Max: 1, Default: 0},
}

var fieldIndex = func() map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return idx
}()

// Fields returns a copy of the form catalogue.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

func FieldByName(name string) (Field, bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return fields[i], true
}
