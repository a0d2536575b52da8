package resultsdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hill-race-archive/race-results/app/modules/normalize"
)

// Race is one named event, across all the years it has run.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:ra"`
	ID            uuid.UUID      `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	RaceName      string         `bun:"race_name,notnull,unique"`
	Editions      []*RaceEdition `bun:"rel:has-many,join:id=race_id"`
	CreatedAt     time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
}

// RaceEdition is one running of a race, usually one per year.
type RaceEdition struct {
	bun.BaseModel `bun:"table:race_editions,alias:e"`
	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	RaceID        uuid.UUID `bun:"race_id,notnull,type:uuid"`
	RaceYear      int       `bun:"race_year,notnull"`
	RaceDate      string    `bun:"race_date,nullzero"`
	RaceCategory  string    `bun:"race_category,nullzero"`
	Race          *Race     `bun:"rel:belongs-to,join:race_id=id"`
	Results       []*Result `bun:"rel:has-many,join:id=edition_id"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// Result is one runner's normalized result in one edition.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:res"`
	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	EditionID     uuid.UUID `bun:"edition_id,notnull,type:uuid"`

	PositionOverall  *int `bun:"position_overall"`
	PositionGender   *int `bun:"position_gender"`
	PositionCategory *int `bun:"position_category"`

	Name        string `bun:"name,nullzero"`
	BibNumber   string `bun:"bib_number,nullzero"`
	Gender      string `bun:"gender,nullzero"`
	AgeCategory string `bun:"age_category,nullzero"`
	Club        string `bun:"club,nullzero"`

	RaceStatus string `bun:"race_status,notnull"`

	FinishTimeSeconds *float64 `bun:"finish_time_seconds"`
	FinishTimeMinutes *float64 `bun:"finish_time_minutes"`
	ChipTimeSeconds   *float64 `bun:"chip_time_seconds"`
	ChipTimeMinutes   *float64 `bun:"chip_time_minutes"`
	GunTimeSeconds    *float64 `bun:"gun_time_seconds"`
	GunTimeMinutes    *float64 `bun:"gun_time_minutes"`

	Metadata map[string]string `bun:"metadata,type:jsonb"`

	// Filled by joined queries, never stored on this table.
	RaceName string `bun:"race_name,scanonly"`
	RaceYear int    `bun:"race_year,scanonly"`

	Edition   *RaceEdition `bun:"rel:belongs-to,join:edition_id=id"`
	CreatedAt time.Time    `bun:",nullzero,notnull,default:current_timestamp"`
}

// ResultFromRecord maps a normalized record onto the storage model. Race-level
// fields are carried by the edition, not the row.
func ResultFromRecord(editionID uuid.UUID, record normalize.Record) *Result {
	return &Result{
		EditionID:         editionID,
		PositionOverall:   record.PositionOverall,
		PositionGender:    record.PositionGender,
		PositionCategory:  record.PositionCategory,
		Name:              record.Name,
		BibNumber:         record.BibNumber,
		Gender:            string(record.Gender),
		AgeCategory:       record.AgeCategory,
		Club:              record.Club,
		RaceStatus:        string(record.RaceStatus),
		FinishTimeSeconds: record.FinishTimeSeconds,
		FinishTimeMinutes: record.FinishTimeMinutes,
		ChipTimeSeconds:   record.ChipTimeSeconds,
		ChipTimeMinutes:   record.ChipTimeMinutes,
		GunTimeSeconds:    record.GunTimeSeconds,
		GunTimeMinutes:    record.GunTimeMinutes,
		Metadata:          record.Metadata,
	}
}

// ToRecord maps the storage model back to a normalized record.
func (r *Result) ToRecord() normalize.Record {
	record := normalize.Record{
		PositionOverall:   r.PositionOverall,
		PositionGender:    r.PositionGender,
		PositionCategory:  r.PositionCategory,
		Name:              r.Name,
		BibNumber:         r.BibNumber,
		Gender:            normalize.Gender(r.Gender),
		AgeCategory:       r.AgeCategory,
		Club:              r.Club,
		RaceStatus:        normalize.RaceStatus(r.RaceStatus),
		FinishTimeSeconds: r.FinishTimeSeconds,
		FinishTimeMinutes: r.FinishTimeMinutes,
		ChipTimeSeconds:   r.ChipTimeSeconds,
		ChipTimeMinutes:   r.ChipTimeMinutes,
		GunTimeSeconds:    r.GunTimeSeconds,
		GunTimeMinutes:    r.GunTimeMinutes,
		Metadata:          r.Metadata,
		RaceName:          r.RaceName,
	}
	if r.RaceYear != 0 {
		year := r.RaceYear
		record.RaceYear = &year
	}
	if r.Edition != nil {
		record.RaceDate = r.Edition.RaceDate
		record.RaceCategory = normalize.RaceCategory(r.Edition.RaceCategory)
	}
	return record
}
