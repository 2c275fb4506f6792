package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Profile mirrors the 'profiles' table.  Each user owns at most one profile;
// the row is created lazily on first read or write.
type Profile struct {
	ID              uint64
	UserID          uint64
	FirstName       string
	LastName        string
	FullName        string
	Phone           string
	Bio             sql.NullString
	ProfileImage    sql.NullString
	BusinessName    string
	BusinessAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ProfileRepo struct{ db *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileCols = "id,user_id,first_name,last_name,full_name,phone,bio,profile_image,business_name,business_address,created_at,updated_at"

// GetOrCreate returns the user's profile, inserting an empty row first if
// none exists yet.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID uint64) (Profile, error) {
	p, err := r.get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return Profile{}, mapErr(err)
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO profiles (user_id) VALUES (?)", userID); err != nil {
		// A concurrent request may have created the row between the read
		// and the insert; a duplicate here is fine.
		if !isDuplicate(err) {
			return Profile{}, mapErr(err)
		}
	}
	p, err = r.get(ctx, userID)
	return p, mapErr(err)
}

func (r *ProfileRepo) get(ctx context.Context, userID uint64) (Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE user_id=? LIMIT 1", userID).
		Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.FullName, &p.Phone,
			&p.Bio, &p.ProfileImage, &p.BusinessName, &p.BusinessAddress,
			&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Update writes the editable profile fields.  full_name is derived from the
// name parts so list views never need a join.
func (r *ProfileRepo) Update(ctx context.Context, userID uint64, firstName, lastName, phone, bio, businessName, businessAddress string) error {
	full := strings.TrimSpace(firstName + " " + lastName)
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET first_name=?, last_name=?, full_name=?, phone=?, bio=?, business_name=?, business_address=?
         WHERE user_id=?`,
		firstName, lastName, full, phone, bio, businessName, businessAddress, userID)
	return mapErr(err)
}

// SetImage records the stored path of an uploaded profile image.
func (r *ProfileRepo) SetImage(ctx context.Context, userID uint64, path string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET profile_image=? WHERE user_id=?", path, userID)
	return mapErr(err)
}
