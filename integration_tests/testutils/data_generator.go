package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// TestDataGenerator produces realistic normalized records for integration
// tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

var clubs = []string{
	"Carnethy",
	"Hunters Bog Trotters",
	"Ochil",
	"Lothian",
	"Westerlands",
	normalize.UnattachedClub,
}

var ageCategories = map[normalize.Gender][]string{
	normalize.GenderMale:   {"MSEN", "M40", "M50", "M60", "U20"},
	normalize.GenderFemale: {"FSEN", "F40", "F50", "F60", "U20"},
}

// GenerateRecords returns n finished records with strictly increasing finish
// times, plus race metadata.
func (g *TestDataGenerator) GenerateRecords(n int, raceName string, year int) []normalize.Record {
	records := make([]normalize.Record, 0, n)
	seconds := 1800.0

	for i := 0; i < n; i++ {
		seconds += float64(g.faker.IntRange(5, 120))

		gender := normalize.GenderMale
		if g.faker.Bool() {
			gender = normalize.GenderFemale
		}
		categories := ageCategories[gender]

		position := i + 1
		y := year
		t := seconds

		record, err := normalize.NewRecord(normalize.Record{
			PositionOverall:   &position,
			Name:              g.faker.Name(),
			Club:              clubs[g.faker.IntRange(0, len(clubs)-1)],
			Gender:            gender,
			AgeCategory:       categories[g.faker.IntRange(0, len(categories)-1)],
			FinishTimeSeconds: &t,
			RaceStatus:        normalize.StatusFinished,
			RaceName:          raceName,
			RaceYear:          &y,
		})
		if err != nil {
			panic(fmt.Sprintf("generated invalid record: %v", err))
		}
		records = append(records, record)
	}

	return records
}
