package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sqlmentor/internal/model"
)

// WeeklyHero is the aggregate row behind the weekly leaderboard.
type WeeklyHero struct {
	UserID      int64 `json:"user_id"`
	Submissions int64 `json:"submissions"`
	Points      int   `json:"points"`
}

type PointsRepository interface {
	AddTotal(userID int64, points int) error
	AddDaily(userID int64, dayStart time.Time, points int) error
	AddWeekly(userID int64, weekStart time.Time, points int) error
	TotalFor(userID int64) (int, error)
	WeeklyFor(userID int64, weekStart time.Time) (int, error)
	TopTotals(limit int) ([]model.LeaderboardEntry, error)
	WeeklyHeroes(weekStart time.Time, limit int) ([]WeeklyHero, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

// AddTotalTx, AddDailyTx and AddWeeklyTx are exported standalone so the
// gateway can reuse the exact same upsert-add inside its transactions.

func AddTotalTx(tx *gorm.DB, userID int64, points int) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"points": gorm.Expr("leaderboard_entries.points + ?", points)}),
	}).Create(&model.LeaderboardEntry{UserID: userID, Points: points}).Error
}

func AddDailyTx(tx *gorm.DB, userID int64, dayStart time.Time, points int) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day_start"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"points": gorm.Expr("daily_points.points + ?", points)}),
	}).Create(&model.DailyPoints{UserID: userID, DayStart: dayStart, Points: points}).Error
}

func AddWeeklyTx(tx *gorm.DB, userID int64, weekStart time.Time, points int) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"points": gorm.Expr("weekly_points.points + ?", points)}),
	}).Create(&model.WeeklyPoints{UserID: userID, WeekStart: weekStart, Points: points}).Error
}

func (r *pointsRepository) AddTotal(userID int64, points int) error {
	return AddTotalTx(r.db, userID, points)
}

func (r *pointsRepository) AddDaily(userID int64, dayStart time.Time, points int) error {
	return AddDailyTx(r.db, userID, dayStart, points)
}

func (r *pointsRepository) AddWeekly(userID int64, weekStart time.Time, points int) error {
	return AddWeeklyTx(r.db, userID, weekStart, points)
}

func (r *pointsRepository) TotalFor(userID int64) (int, error) {
	var entry model.LeaderboardEntry
	err := r.db.Where("user_id = ?", userID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	return entry.Points, err
}

func (r *pointsRepository) WeeklyFor(userID int64, weekStart time.Time) (int, error) {
	var row model.WeeklyPoints
	err := r.db.Where("user_id = ? AND week_start = ?", userID, weekStart).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	return row.Points, err
}

func (r *pointsRepository) TopTotals(limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.Order("points DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *pointsRepository) WeeklyHeroes(weekStart time.Time, limit int) ([]WeeklyHero, error) {
	var heroes []WeeklyHero
	err := r.db.Model(&model.Submission{}).
		Select("user_id, COUNT(*) AS submissions, SUM(points) AS points").
		Where("submitted_at >= ?", weekStart).
		Group("user_id").
		Order("submissions DESC, points DESC").
		Limit(limit).
		Scan(&heroes).Error
	return heroes, err
}
