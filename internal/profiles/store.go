// Package profiles stores member profiles and match preferences and finds
// potential matches between them.
package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/galatea-comics/galatea/internal/db"
)

var (
	// ErrNotFound means no record exists for the user.
	ErrNotFound = errors.New("not found")
	// ErrExists means a record already exists for the user.
	ErrExists = errors.New("already exists")
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store manages persistence of profiles and preferences.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a new profile store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

const profileColumns = `uid, display_name, age, bio, location, interests, looking_for, gender_identity, gender_preference, photos, verified, last_active, created_at, updated_at`

// CreateProfile adds a new profile. It fails with ErrExists if the user
// already has one.
func (s *Store) CreateProfile(ctx context.Context, p Profile) (*Profile, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning create: %w", err)
	}
	defer tx.Rollback()

	exists, err := profileExists(ctx, tx, p.UID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("profile %s: %w", p.UID, ErrExists)
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt, p.LastActive = now, now, now
	if err := insertProfile(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing create: %w", err)
	}
	return &p, nil
}

// UpdateProfile replaces an existing profile. It fails with ErrNotFound if
// the user has none. CreatedAt and Verified are preserved.
func (s *Store) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	existing, err := getProfile(ctx, tx, p.UID)
	if err != nil {
		return nil, err
	}
	out, err := s.updateProfile(ctx, tx, existing, p)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return out, nil
}

// SaveProfile creates or updates a profile. CreatedAt is only set on the
// first write.
func (s *Store) SaveProfile(ctx context.Context, p Profile) (*Profile, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	out, err := s.saveProfile(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing save: %w", err)
	}
	return out, nil
}

func (s *Store) saveProfile(ctx context.Context, q querier, p Profile) (*Profile, error) {
	existing, err := getProfile(ctx, q, p.UID)
	switch {
	case errors.Is(err, ErrNotFound):
		now := s.now().UTC()
		p.CreatedAt, p.UpdatedAt, p.LastActive = now, now, now
		if err := insertProfile(ctx, q, p); err != nil {
			return nil, err
		}
		return &p, nil
	case err != nil:
		return nil, err
	}
	return s.updateProfile(ctx, q, existing, p)
}

func (s *Store) updateProfile(ctx context.Context, q querier, existing *Profile, p Profile) (*Profile, error) {
	now := s.now().UTC()
	p.CreatedAt = existing.CreatedAt
	p.Verified = existing.Verified
	p.UpdatedAt, p.LastActive = now, now

	interests, genderPref, photos, err := encodeProfileLists(p)
	if err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE profiles SET display_name = ?, age = ?, bio = ?, location = ?, interests = ?, looking_for = ?,
		   gender_identity = ?, gender_preference = ?, photos = ?, last_active = ?, updated_at = ?
		 WHERE uid = ?`,
		p.DisplayName, p.Age, p.Bio, p.Location, interests, string(p.LookingFor),
		p.GenderIdentity, genderPref, photos, formatTime(p.LastActive), formatTime(p.UpdatedAt), p.UID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating profile %s: %w", p.UID, err)
	}
	return &p, nil
}

// GetProfile returns the user's profile or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	return getProfile(ctx, s.db, uid)
}

// ListProfiles returns every profile, most recently active first.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY last_active DESC, uid`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// DeleteProfile removes the user's profile. Deleting a missing profile is
// not an error.
func (s *Store) DeleteProfile(ctx context.Context, uid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("deleting profile %s: %w", uid, err)
	}
	return nil
}

// VerifyProfile marks the user's profile verified.
func (s *Store) VerifyProfile(ctx context.Context, uid string) error {
	return s.touch(ctx, uid, `UPDATE profiles SET verified = 1, updated_at = ? WHERE uid = ?`)
}

// TouchLastActive records that the user was just active.
func (s *Store) TouchLastActive(ctx context.Context, uid string) error {
	return s.touch(ctx, uid, `UPDATE profiles SET last_active = ? WHERE uid = ?`)
}

func (s *Store) touch(ctx context.Context, uid, stmt string) error {
	res, err := s.db.ExecContext(ctx, stmt, formatTime(s.now()), uid)
	if err != nil {
		return fmt.Errorf("updating profile %s: %w", uid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s: %w", uid, ErrNotFound)
	}
	return nil
}

// CreatePreferences adds preferences for uid. It fails with ErrExists if
// they are already set.
func (s *Store) CreatePreferences(ctx context.Context, uid string, p Preferences) (*Preferences, error) {
	p.UID = uid
	if err := ValidatePreferences(p); err != nil {
		return nil, err
	}
	if _, err := getPreferences(ctx, s.db, uid); err == nil {
		return nil, fmt.Errorf("preferences %s: %w", uid, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := insertPreferences(ctx, s.db, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePreferences replaces existing preferences for uid. It fails with
// ErrNotFound if none are set.
func (s *Store) UpdatePreferences(ctx context.Context, uid string, p Preferences) (*Preferences, error) {
	p.UID = uid
	if err := ValidatePreferences(p); err != nil {
		return nil, err
	}
	existing, err := getPreferences(ctx, s.db, uid)
	if err != nil {
		return nil, err
	}
	return s.updatePreferences(ctx, s.db, existing, p)
}

// SavePreferences creates or updates preferences for uid.
func (s *Store) SavePreferences(ctx context.Context, uid string, p Preferences) (*Preferences, error) {
	p.UID = uid
	if err := ValidatePreferences(p); err != nil {
		return nil, err
	}
	return s.savePreferences(ctx, s.db, p)
}

func (s *Store) savePreferences(ctx context.Context, q querier, p Preferences) (*Preferences, error) {
	existing, err := getPreferences(ctx, q, p.UID)
	switch {
	case errors.Is(err, ErrNotFound):
		now := s.now().UTC()
		p.CreatedAt, p.UpdatedAt = now, now
		if err := insertPreferences(ctx, q, p); err != nil {
			return nil, err
		}
		return &p, nil
	case err != nil:
		return nil, err
	}
	return s.updatePreferences(ctx, q, existing, p)
}

func (s *Store) updatePreferences(ctx context.Context, q querier, existing *Preferences, p Preferences) (*Preferences, error) {
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()
	genderPref, lookingFor, err := encodePreferenceLists(p)
	if err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE preferences SET age_min = ?, age_max = ?, max_distance = ?, gender_preference = ?, looking_for = ?, updated_at = ?
		 WHERE uid = ?`,
		p.AgeRange.Min, p.AgeRange.Max, p.MaxDistance, genderPref, lookingFor, formatTime(p.UpdatedAt), p.UID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating preferences %s: %w", p.UID, err)
	}
	return &p, nil
}

// GetPreferences returns the user's preferences or ErrNotFound.
func (s *Store) GetPreferences(ctx context.Context, uid string) (*Preferences, error) {
	return getPreferences(ctx, s.db, uid)
}

// DeletePreferences removes the user's preferences.
func (s *Store) DeletePreferences(ctx context.Context, uid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("deleting preferences %s: %w", uid, err)
	}
	return nil
}

// SaveComplete validates and saves a profile and its preferences together.
// Either both are written or neither is.
func (s *Store) SaveComplete(ctx context.Context, p Profile, prefs Preferences) (*Profile, *Preferences, error) {
	prefs.UID = p.UID
	e := &ValidationError{}
	var ve *ValidationError
	if err := ValidateProfile(p); errors.As(err, &ve) {
		e.Problems = append(e.Problems, ve.Problems...)
	}
	if err := ValidatePreferences(prefs); errors.As(err, &ve) {
		e.Problems = append(e.Problems, ve.Problems...)
	}
	if err := e.orNil(); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	savedProfile, err := s.saveProfile(ctx, tx, p)
	if err != nil {
		return nil, nil, err
	}
	savedPrefs, err := s.savePreferences(ctx, tx, prefs)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing save: %w", err)
	}
	return savedProfile, savedPrefs, nil
}

// DeleteAll removes everything stored for the user.
func (s *Store) DeleteAll(ctx context.Context, uid string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("deleting profile %s: %w", uid, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("deleting preferences %s: %w", uid, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// FindMatches returns up to MaxMatches other profiles whose age falls in
// uid's preferred range and, when uid prefers particular genders, whose
// gender identity is one of them. Most recently active come first.
func (s *Store) FindMatches(ctx context.Context, uid string) ([]Profile, error) {
	prefs, err := getPreferences(ctx, s.db, uid)
	if err != nil {
		return nil, fmt.Errorf("finding matches: %w", err)
	}
	if _, err := getProfile(ctx, s.db, uid); err != nil {
		return nil, fmt.Errorf("finding matches: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uid != ? AND age >= ? AND age <= ?`
	args := []any{uid, prefs.AgeRange.Min, prefs.AgeRange.Max}
	if len(prefs.GenderPreference) > 0 {
		query += ` AND gender_identity IN (?` + strings.Repeat(", ?", len(prefs.GenderPreference)-1) + `)`
		for _, g := range prefs.GenderPreference {
			args = append(args, g)
		}
	}
	query += ` ORDER BY last_active DESC, uid LIMIT ?`
	args = append(args, MaxMatches)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func profileExists(ctx context.Context, q querier, uid string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE uid = ?`, uid).Scan(&n); err != nil {
		return false, fmt.Errorf("checking profile %s: %w", uid, err)
	}
	return n > 0, nil
}

func insertProfile(ctx context.Context, q querier, p Profile) error {
	interests, genderPref, photos, err := encodeProfileLists(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UID, p.DisplayName, p.Age, p.Bio, p.Location, interests, string(p.LookingFor),
		p.GenderIdentity, genderPref, photos, p.Verified,
		formatTime(p.LastActive), formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting profile %s: %w", p.UID, err)
	}
	return nil
}

func getProfile(ctx context.Context, q querier, uid string) (*Profile, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE uid = ?`, uid)
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", uid, err)
	}
	defer rows.Close()
	list, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("profile %s: %w", uid, ErrNotFound)
	}
	return &list[0], nil
}

func scanProfiles(rows *sql.Rows) ([]Profile, error) {
	var out []Profile
	for rows.Next() {
		var p Profile
		var lookingFor, interests, genderPref, photos string
		var lastActive, createdAt, updatedAt string
		if err := rows.Scan(&p.UID, &p.DisplayName, &p.Age, &p.Bio, &p.Location, &interests, &lookingFor,
			&p.GenderIdentity, &genderPref, &photos, &p.Verified, &lastActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		p.LookingFor = LookingFor(lookingFor)
		if err := decodeLists(p.UID, []string{interests, genderPref, photos}, &p.Interests, &p.GenderPreference, &p.Photos); err != nil {
			return nil, err
		}
		var err error
		if p.LastActive, err = parseTime(lastActive); err != nil {
			return nil, fmt.Errorf("profile %s last_active: %w", p.UID, err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("profile %s created_at: %w", p.UID, err)
		}
		if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("profile %s updated_at: %w", p.UID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func insertPreferences(ctx context.Context, q querier, p Preferences) error {
	genderPref, lookingFor, err := encodePreferenceLists(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO preferences (uid, age_min, age_max, max_distance, gender_preference, looking_for, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UID, p.AgeRange.Min, p.AgeRange.Max, p.MaxDistance, genderPref, lookingFor,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting preferences %s: %w", p.UID, err)
	}
	return nil
}

func getPreferences(ctx context.Context, q querier, uid string) (*Preferences, error) {
	var (
		p                    Preferences
		genderPref, looking  string
		createdAt, updatedAt string
	)
	err := q.QueryRowContext(ctx,
		`SELECT uid, age_min, age_max, max_distance, gender_preference, looking_for, created_at, updated_at
		 FROM preferences WHERE uid = ?`, uid,
	).Scan(&p.UID, &p.AgeRange.Min, &p.AgeRange.Max, &p.MaxDistance, &genderPref, &looking, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("preferences %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting preferences %s: %w", uid, err)
	}
	if err := decodeLists(uid, []string{genderPref, looking}, &p.GenderPreference, &p.LookingFor); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("preferences %s created_at: %w", uid, err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("preferences %s updated_at: %w", uid, err)
	}
	return &p, nil
}

func encodeProfileLists(p Profile) (interests, genderPref, photos string, err error) {
	enc, err := encodeLists(p.Interests, p.GenderPreference, p.Photos)
	if err != nil {
		return "", "", "", fmt.Errorf("encoding profile %s: %w", p.UID, err)
	}
	return enc[0], enc[1], enc[2], nil
}

func encodePreferenceLists(p Preferences) (genderPref, lookingFor string, err error) {
	enc, err := encodeLists(p.GenderPreference, p.LookingFor)
	if err != nil {
		return "", "", fmt.Errorf("encoding preferences %s: %w", p.UID, err)
	}
	return enc[0], enc[1], nil
}

// encodeLists stores each slice as a JSON array; nil becomes [].
func encodeLists(lists ...any) ([]string, error) {
	out := make([]string, len(lists))
	for i, l := range lists {
		data, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		if string(data) == "null" {
			data = []byte("[]")
		}
		out[i] = string(data)
	}
	return out, nil
}

func decodeLists(uid string, raw []string, dst ...any) error {
	for i, r := range raw {
		if err := json.Unmarshal([]byte(r), dst[i]); err != nil {
			return fmt.Errorf("decoding %s column %d: %w", uid, i, err)
		}
	}
	return nil
}
