// Package catalog holds the closed set of place categories a search may
// request. Values mirror the provider's place type identifiers.
package catalog

// Category is a business classification tag drawn from the closed catalog.
type Category string

// Wildcard expands to the full catalog when requested.
const Wildcard = "all"

var categories = []Category{
	"accounting",
	"atm",
	"bakery",
	"bank",
	"bar",
	"beauty_salon",
	"book_store",
	"cafe",
	"car_dealer",
	"car_rental",
	"car_repair",
	"car_wash",
	"clothing_store",
	"convenience_store",
	"dentist",
	"doctor",
	"electrician",
	"electronics_store",
	"florist",
	"food",
	"furniture_store",
	"gas_station",
	"gym",
	"hair_care",
	"hardware_store",
	"hospital",
	"insurance_agency",
	"jewelry_store",
	"laundry",
	"lawyer",
	"library",
	"liquor_store",
	"lodging",
	"meal_delivery",
	"meal_takeaway",
	"night_club",
	"painter",
	"park",
	"pet_store",
	"pharmacy",
	"physiotherapist",
	"plumber",
	"real_estate_agency",
	"restaurant",
	"shoe_store",
	"shopping_mall",
	"spa",
	"store",
	"supermarket",
	"travel_agency",
	"veterinary_care",
}

var index = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(categories))
	for _, c := range categories {
		m[c] = struct{}{}
	}
	return m
}()

// All returns the full catalog in its fixed order. The returned slice is a
// copy and safe to mutate.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Contains reports catalog membership.
func Contains(c Category) bool {
	_, ok := index[c]
	return ok
}

// Validate splits the requested tags into catalog members and rejects, both
// in input order. Duplicates are preserved; deduplication is the caller's
// concern.
func Validate(requested []string) (valid []Category, rejected []string) {
	for _, r := range requested {
		c := Category(r)
		if Contains(c) {
			valid = append(valid, c)
		} else {
			rejected = append(rejected, r)
		}
	}
	return valid, rejected
}
