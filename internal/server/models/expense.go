package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is an expense category tag.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryGroceries     Category = "groceries"
	CategoryTransport     Category = "transport"
	CategoryFuel          Category = "fuel"
	CategoryTravel        Category = "travel"
	CategoryShopping      Category = "shopping"
	CategoryClothing      Category = "clothing"
	CategoryElectronics   Category = "electronics"
	CategorySubscriptions Category = "subscriptions"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryFitness       Category = "fitness"
	CategoryEducation     Category = "education"
	CategoryBooks         Category = "books"
	CategoryUtilities     Category = "utilities"
	CategoryRent          Category = "rent"
	CategoryMaintenance   Category = "maintenance"
	CategoryPersonal      Category = "personal"
	CategoryBeauty        Category = "beauty"
	CategoryGifts         Category = "gifts"
	CategoryInsurance     Category = "insurance"
	CategoryTaxes         Category = "taxes"
	CategoryBusiness      Category = "business"
	CategoryRestaurant    Category = "restaurant"
	CategoryFastFood      Category = "fast_food"
	CategoryCoffee        Category = "coffee"
	CategoryPharmacy      Category = "pharmacy"
	CategoryMobile        Category = "mobile"
	CategoryInternet      Category = "internet"
	CategoryParking       Category = "parking"
	CategoryCarService    Category = "car_service"
	CategoryRideSharing   Category = "ride_sharing"
	CategoryInvestment    Category = "investment"
	CategoryPet           Category = "pet"
	CategoryKids          Category = "kids"
	CategoryMisc          Category = "misc"
	CategoryOther         Category = "other"
)

// PaymentMethod is how an expense was paid.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentUPI   PaymentMethod = "upi"
	PaymentBank  PaymentMethod = "bank"
	PaymentOther PaymentMethod = "other"
)

// BaselineConfidence is assigned to pattern-detected expenses until a
// classifier exists.
const BaselineConfidence = 0.7

// Expense is a monetary amount detected in an entry's transcript.
// Rows are append-only: created by the extraction stage, never updated.
type Expense struct {
	ID              string
	EntryID         string
	Amount          decimal.Decimal
	Currency        string
	Category        Category
	PaymentMethod   PaymentMethod
	Merchant        string
	DetectedText    string
	ConfidenceScore float64
	Notes           string
	CreatedAt       time.Time
}
