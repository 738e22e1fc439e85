package models

// Column names of the booking record, in the order the pipeline was trained on.
const (
	FieldLeadTime                    = "lead_time"
	FieldDepositType                 = "deposit_type"
	FieldADR                         = "adr"
	FieldTotalOfSpecialRequests      = "total_of_special_requests"
	FieldArrivalDateDayOfMonth       = "arrival_date_day_of_month"
	FieldArrivalDateWeekNumber       = "arrival_date_week_number"
	FieldStaysInWeekNights           = "stays_in_week_nights"
	FieldStaysInWeekendNights        = "stays_in_weekend_nights"
	FieldRequiredCarParkingSpaces    = "required_car_parking_spaces"
	FieldAdults                      = "adults"
	FieldChildren                    = "children"
	FieldBabies                      = "babies"
	FieldTotalGuest                  = "total_guest"
	FieldTotalNight                  = "total_night"
	FieldCustomerType                = "customer_type"
	FieldReservedRoomType            = "reserved_room_type"
	FieldMarketSegment               = "market_segment"
	FieldCountry                     = "country"
	FieldMeal                        = "meal"
	FieldDistributionChannel         = "distribution_channel"
	FieldPreviousCancellations       = "previous_cancellations"
	FieldPreviousBookingsNotCanceled = "previous_bookings_not_canceled"
	FieldIsRepeatedGuest             = "is_repeated_guest"
	FieldAgent                       = "agent"
	FieldCompany                     = "company"
	FieldBookingChanges              = "booking_changes"
	FieldArrivalDateMonth            = "arrival_date_month"
)

// Placeholder values for columns the pipeline expects but the form does not expose.
const (
	PlaceholderAgent          = 0
	PlaceholderCompany        = 0
	PlaceholderBookingChanges = 0
	PlaceholderArrivalMonth   = "January"
)

const (
	LabelHonored  = 0
	LabelCanceled = 1
)

const (
	VerdictHonored  = "honored"
	VerdictCanceled = "canceled"

	StyleSuccess = "success"
	StyleError   = "error"
)

const (
	MessageCanceled = "⚠️ This booking is likely to be CANCELED"
	MessageHonored  = "✅ This booking is likely to be HONORED"
)

const (
	// DefaultSessionTTL время жизни состояния формы в Redis
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultPredictionCacheSize размер LRU-кэша предсказаний
	DefaultPredictionCacheSize = 1024

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 60

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах
)

var (
	DepositTypes         = []string{"No Deposit", "Non Refund", "Refundable"}
	CustomerTypes        = []string{"Transient", "Transient-Party", "Contract", "Group"}
	ReservedRoomTypes    = []string{"A", "B", "C", "D", "E", "F", "G", "H", "L", "P"}
	MarketSegments       = []string{"Online TA", "Direct", "Corporate", "Groups", "Complementary", "Aviation", "Undefined", "Offline TA/TO"}
	Countries            = []string{"Portugal", "Non Portugal", "Other"}
	Meals                = []string{"BB", "HB", "FB", "SC", "Undefined"}
	DistributionChannels = []string{"TA/TO", "Direct", "Corporate", "GDS", "Undefined"}
)
