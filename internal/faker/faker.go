package faker

import (
	"fmt"
	"time"

	"github.com/mirelabs/bankforge/internal/randx"
)

var firstNames = []string{
	"John", "Jane", "Michael", "Emily", "David", "Sarah", "Robert", "Lisa",
	"William", "Jennifer", "James", "Maria", "Charles", "Patricia", "Thomas",
	"Linda", "Daniel", "Elizabeth", "Matthew", "Barbara", "Anthony", "Susan",
	"Mark", "Jessica", "Steven", "Karen", "Paul", "Nancy", "Andrew", "Betty",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Walker",
}

var streets = []string{
	"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Pine Rd", "Elm St",
	"Washington Blvd", "Park Ave", "Lake Dr", "River Rd", "Hillcrest Ave",
	"Sunset Blvd", "Highland Dr", "Meadow Ln", "Forest Ave",
}

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Columbus", "Charlotte", "Seattle", "Denver", "Nashville", "Portland",
	"Memphis", "Louisville", "Baltimore", "Tucson",
}

var stateAbbrs = []string{
	"NY", "CA", "IL", "TX", "AZ", "PA", "FL", "OH", "GA", "NC", "WA", "CO",
	"TN", "OR", "MD", "KY", "MO", "WI", "MN", "MA",
}

var emailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

// Faker produces plausible person and address fields from a shared
// deterministic random source. It holds no state of its own beyond the
// source, so output depends only on seed and call order.
type Faker struct {
	src *randx.Source
}

func New(src *randx.Source) *Faker {
	return &Faker{src: src}
}

func (f *Faker) FirstName() string {
	return randx.Choice(f.src, firstNames)
}

func (f *Faker) LastName() string {
	return randx.Choice(f.src, lastNames)
}

func (f *Faker) City() string {
	return randx.Choice(f.src, cities)
}

func (f *Faker) StateAbbr() string {
	return randx.Choice(f.src, stateAbbrs)
}

func (f *Faker) StreetAddress() string {
	return fmt.Sprintf("%d %s", f.src.Between(100, 9999), randx.Choice(f.src, streets))
}

func (f *Faker) ZipCode() string {
	return fmt.Sprintf("%05d", f.src.Between(10000, 99999))
}

func (f *Faker) EmailDomain() string {
	return randx.Choice(f.src, emailDomains)
}

func (f *Faker) Phone() string {
	return fmt.Sprintf("+1-%03d-%03d-%04d",
		f.src.Between(200, 999), f.src.Intn(1000), f.src.Intn(10000))
}

func (f *Faker) IPv4() string {
	return fmt.Sprintf("%d.%d.%d.%d",
		f.src.Between(1, 254), f.src.Intn(256), f.src.Intn(256), f.src.Between(1, 254))
}

// SSN returns a synthetic national-ID string. Collisions are tolerated
// by callers, which mix in an ordinal before hashing.
func (f *Faker) SSN() string {
	return fmt.Sprintf("%03d-%02d-%04d",
		f.src.Between(100, 899), f.src.Between(10, 99), f.src.Between(1000, 9999))
}

// DateOfBirth returns a birth date for an adult between minAge and
// maxAge years old as of ref.
func (f *Faker) DateOfBirth(ref time.Time, minAge, maxAge int) time.Time {
	latest := ref.AddDate(-minAge, 0, 0)
	earliest := ref.AddDate(-maxAge, 0, 0)
	t := f.src.TimeBetween(earliest, latest)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Location returns a "City, ST" pair.
func (f *Faker) Location() string {
	return fmt.Sprintf("%s, %s", f.City(), f.StateAbbr())
}
