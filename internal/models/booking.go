package models

import (
	"strconv"
	"strings"
)

// BookingRecord is the single row handed to the pipeline. Field order matches
// RecordColumns and the schema the pipeline was fitted on.
type BookingRecord struct {
	LeadTime                    int     `json:"lead_time"`
	DepositType                 string  `json:"deposit_type"`
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
	TotalGuest                  int     `json:"total_guest"`
	TotalNight                  int     `json:"total_night"`
	CustomerType                string  `json:"customer_type"`
	ReservedRoomType            string  `json:"reserved_room_type"`
	MarketSegment               string  `json:"market_segment"`
	Country                     string  `json:"country"`
	Meal                        string  `json:"meal"`
	DistributionChannel         string  `json:"distribution_channel"`
	PreviousCancellations       int     `json:"previous_cancellations"`
	PreviousBookingsNotCanceled int     `json:"previous_bookings_not_canceled"`
	IsRepeatedGuest             int     `json:"is_repeated_guest"`
	Agent                       int     `json:"agent"`
	Company                     int     `json:"company"`
	BookingChanges              int     `json:"booking_changes"`
	ArrivalDateMonth            string  `json:"arrival_date_month"`
}

var recordColumns = []string{
	FieldLeadTime,
	FieldDepositType,
	FieldADR,
	FieldTotalOfSpecialRequests,
	FieldArrivalDateDayOfMonth,
	FieldArrivalDateWeekNumber,
	FieldStaysInWeekNights,
	FieldStaysInWeekendNights,
	FieldRequiredCarParkingSpaces,
	FieldAdults,
	FieldChildren,
	FieldBabies,
	FieldTotalGuest,
	FieldTotalNight,
	FieldCustomerType,
	FieldReservedRoomType,
	FieldMarketSegment,
	FieldCountry,
	FieldMeal,
	FieldDistributionChannel,
	FieldPreviousCancellations,
	FieldPreviousBookingsNotCanceled,
	FieldIsRepeatedGuest,
	FieldAgent,
	FieldCompany,
	FieldBookingChanges,
	FieldArrivalDateMonth,
}

// RecordColumns returns the record's column names in schema order.
func RecordColumns() []string {
	return append([]string(nil), recordColumns...)
}

// NewBookingRecord derives the aggregate columns from in and fills the
// placeholder columns with their fixed values.
func NewBookingRecord(in BookingInput) BookingRecord {
	return BookingRecord{
		LeadTime:                    in.LeadTime,
		DepositType:                 in.DepositType,
		ADR:                         in.ADR,
		TotalOfSpecialRequests:      in.TotalOfSpecialRequests,
		ArrivalDateDayOfMonth:       in.ArrivalDateDayOfMonth,
		ArrivalDateWeekNumber:       in.ArrivalDateWeekNumber,
		StaysInWeekNights:           in.StaysInWeekNights,
		StaysInWeekendNights:        in.StaysInWeekendNights,
		RequiredCarParkingSpaces:    in.RequiredCarParkingSpaces,
		Adults:                      in.Adults,
		Children:                    in.Children,
		Babies:                      in.Babies,
		TotalGuest:                  in.Adults + in.Children + in.Babies,
		TotalNight:                  in.StaysInWeekNights + in.StaysInWeekendNights,
		CustomerType:                in.CustomerType,
		ReservedRoomType:            in.ReservedRoomType,
		MarketSegment:               in.MarketSegment,
		Country:                     in.Country,
		Meal:                        in.Meal,
		DistributionChannel:         in.DistributionChannel,
		PreviousCancellations:       in.PreviousCancellations,
		PreviousBookingsNotCanceled: in.PreviousBookingsNotCanceled,
		IsRepeatedGuest:             in.IsRepeatedGuest,
		Agent:                       PlaceholderAgent,
		Company:                     PlaceholderCompany,
		BookingChanges:              PlaceholderBookingChanges,
		ArrivalDateMonth:            PlaceholderArrivalMonth,
	}
}

// Value is one cell of the record: either a number or a category string.
type Value struct {
	Num    float64
	Str    string
	IsText bool
}

func Number(v float64) Value { return Value{Num: v} }

func Text(s string) Value { return Value{Str: s, IsText: true} }

func (v Value) String() string {
	if v.IsText {
		return v.Str
	}
	return strconv.FormatFloat(v.Num, 'g', -1, 64)
}

// Values returns the cells in RecordColumns order.
func (r BookingRecord) Values() []Value {
	n := func(v int) Value { return Number(float64(v)) }
	return []Value{
		n(r.LeadTime),
		Text(r.DepositType),
		Number(r.ADR),
		n(r.TotalOfSpecialRequests),
		n(r.ArrivalDateDayOfMonth),
		n(r.ArrivalDateWeekNumber),
		n(r.StaysInWeekNights),
		n(r.StaysInWeekendNights),
		n(r.RequiredCarParkingSpaces),
		n(r.Adults),
		n(r.Children),
		n(r.Babies),
		n(r.TotalGuest),
		n(r.TotalNight),
		Text(r.CustomerType),
		Text(r.ReservedRoomType),
		Text(r.MarketSegment),
		Text(r.Country),
		Text(r.Meal),
		Text(r.DistributionChannel),
		n(r.PreviousCancellations),
		n(r.PreviousBookingsNotCanceled),
		n(r.IsRepeatedGuest),
		n(r.Agent),
		n(r.Company),
		n(r.BookingChanges),
		Text(r.ArrivalDateMonth),
	}
}

// Key is a canonical encoding of the record, equal for equal records.
func (r BookingRecord) Key() string {
	vals := r.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\x1f")
}
