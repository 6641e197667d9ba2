package faker

import (
	"regexp"
	"testing"
	"time"

	"github.com/mirelabs/bankforge/internal/randx"
)

func TestDeterministicOutput(t *testing.T) {
	a := New(randx.New(42))
	b := New(randx.New(42))

	for i := 0; i < 50; i++ {
		if a.FirstName() != b.FirstName() {
			t.Fatal("FirstName diverged for the same seed")
		}
		if a.StreetAddress() != b.StreetAddress() {
			t.Fatal("StreetAddress diverged for the same seed")
		}
		if a.Phone() != b.Phone() {
			t.Fatal("Phone diverged for the same seed")
		}
	}
}

func TestFieldFormats(t *testing.T) {
	f := New(randx.New(1))

	phoneRe := regexp.MustCompile(`^\+1-\d{3}-\d{3}-\d{4}$`)
	ssnRe := regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	zipRe := regexp.MustCompile(`^\d{5}$`)
	ipRe := regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	locationRe := regexp.MustCompile(`^[A-Za-z ]+, [A-Z]{2}$`)

	for i := 0; i < 200; i++ {
		if s := f.Phone(); !phoneRe.MatchString(s) {
			t.Errorf("Phone format: %q", s)
		}
		if s := f.SSN(); !ssnRe.MatchString(s) {
			t.Errorf("SSN format: %q", s)
		}
		if s := f.ZipCode(); !zipRe.MatchString(s) {
			t.Errorf("ZipCode format: %q", s)
		}
		if s := f.IPv4(); !ipRe.MatchString(s) {
			t.Errorf("IPv4 format: %q", s)
		}
		if s := f.Location(); !locationRe.MatchString(s) {
			t.Errorf("Location format: %q", s)
		}
	}
}

func TestDateOfBirthWithinAgeBand(t *testing.T) {
	f := New(randx.New(1))
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		dob := f.DateOfBirth(ref, 18, 85)
		if dob.After(ref.AddDate(-18, 0, 0)) {
			t.Fatalf("DateOfBirth %v younger than 18 at %v", dob, ref)
		}
		if dob.Before(ref.AddDate(-85, 0, 0)) {
			t.Fatalf("DateOfBirth %v older than 85 at %v", dob, ref)
		}
	}
}
