// Package taxonomy holds the fixed currency and category vocabularies.
package taxonomy

const (
	CurrencyGHS = "GHS"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"

	// DefaultCurrency applies until a user's settings document is loaded.
	DefaultCurrency = CurrencyGHS

	// CategoryOther is the fallback category for both entity types.
	CategoryOther = "Other"

	PeriodWeekly  = "Weekly"
	PeriodMonthly = "Monthly"
	PeriodYearly  = "Yearly"
)

// Entity distinguishes the two transaction collections.
type Entity string

const (
	Expense Entity = "expenses"
	Income  Entity = "income"
)

var Currencies = []string{CurrencyGHS, CurrencyUSD, CurrencyEUR, CurrencyGBP}

var ExpenseCategories = []string{
	"Food", "Transport", "Transportation", "Housing", "Utilities", "Entertainment", "Shopping", CategoryOther,
}

var IncomeCategories = []string{
	"Salary", "Business", "Gift", "Bonus", CategoryOther,
}

var Periods = []string{PeriodWeekly, PeriodMonthly, PeriodYearly}

func IsCurrency(code string) bool {
	return contains(Currencies, code)
}

func IsPeriod(period string) bool {
	return contains(Periods, period)
}

// Categories returns the taxonomy for an entity type.
func Categories(e Entity) []string {
	if e == Income {
		return IncomeCategories
	}
	return ExpenseCategories
}

func IsCategory(e Entity, category string) bool {
	return contains(Categories(e), category)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
