package sandbox

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens the sandbox database. A DSN starting with "mysql://" selects MySQL (the rest is
// a go-sql-driver DSN and must include parseTime=true); anything else is a SQLite DSN.
func OpenDB(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	if rest, ok := strings.CutPrefix(dsn, "mysql://"); ok {
		db, err = gorm.Open(mysql.Open(rest), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err == nil {
			// SQLite serializes writers; one connection also keeps a shared in-memory db alive
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, dbErr
			}
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open sandbox database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Table{},
		&Reservation{},
		&ActivityLog{},
		&Menu{},
		&Order{},
		&OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("migrate sandbox database: %w", err)
	}
	return nil
}

// Seed fills an empty database with two tables' worth of demo data around now. It does nothing
// when users already exist.
func Seed(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []User{
			{Name: "Admin", Email: "admin@resto.id", Role: "admin"},
			{Name: "Sari", Email: "staff@resto.id", Role: "staff"},
			{Name: "Rina", Email: "chef@resto.id", Role: "chef"},
		}
		for i := range users {
			hashed, err := bcrypt.GenerateFromPassword([]byte(users[i].Role+"123"), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			users[i].Password = string(hashed)
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		tables := []Table{{TableNumber: "A1"}, {TableNumber: "A2"}, {TableNumber: "B1", Status: "occupied"}, {TableNumber: "B2"}}
		for i := range tables {
			if tables[i].Status == "" {
				tables[i].Status = "available"
			}
		}
		if err := tx.Create(&tables).Error; err != nil {
			return err
		}

		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		reservations := []Reservation{
			{TableID: tables[0].ID, Salon: "main", CustomerName: "Budi Santoso", CustomerPhone: "081234567890", ReservationTime: day.Add(19 * time.Hour), StatusID: 1, CreatedBy: users[1].ID},
			{TableID: tables[1].ID, Salon: "main", CustomerName: "Dewi Lestari", CustomerPhone: "081298765432", ReservationTime: day.Add(24*time.Hour + 12*time.Hour), SpecialRequests: "Kursi bayi", StatusID: 2, CreatedBy: users[1].ID},
			{TableID: tables[3].ID, Salon: "terrace", CustomerName: "Andi Wijaya", CustomerPhone: "081311112222", ReservationTime: day.Add(-24*time.Hour + 20*time.Hour), StatusID: 4, CreatedBy: users[0].ID},
		}
		if err := tx.Create(&reservations).Error; err != nil {
			return err
		}

		menus := []Menu{
			{Name: "Nasi Goreng", Price: decimal.NewFromInt(25000)},
			{Name: "Sate Ayam", Price: decimal.NewFromInt(30000)},
			{Name: "Es Teh", Price: decimal.NewFromInt(5000)},
		}
		if err := tx.Create(&menus).Error; err != nil {
			return err
		}

		chef := users[2].ID
		orders := []Order{
			{
				TableID: tables[2].ID, Status: "in_progress", ChefID: &chef, CreatedAt: now.Add(-30 * time.Minute),
				OrderItems: []OrderItem{
					{MenuID: menus[0].ID, Quantity: 2, Price: menus[0].Price, Notes: "Pedas"},
					{MenuID: menus[2].ID, Quantity: 2, Price: menus[2].Price},
				},
			},
			{
				TableID: tables[0].ID, Status: "paid", CreatedAt: now.Add(-2 * time.Hour),
				OrderItems: []OrderItem{
					{MenuID: menus[1].ID, Quantity: 1, Price: menus[1].Price},
				},
			},
		}
		for i := range orders {
			total := decimal.Zero
			for _, item := range orders[i].OrderItems {
				total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			orders[i].TotalAmount = total
			orders[i].UpdatedAt = orders[i].CreatedAt
		}
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}

		admin := users[0].ID
		logs := []ActivityLog{
			{UserID: &admin, UserEmail: users[0].Email, ActionType: "LOGIN", EntityType: "USER", EntityID: fmt.Sprint(admin), Details: `{"message":"Admin signed in"}`, CreatedAt: now.Add(-3 * time.Hour)},
			{UserID: &admin, UserEmail: users[0].Email, ActionType: "CREATE", EntityType: "PRODUCT", EntityID: fmt.Sprint(menus[1].ID), Details: `{"message":"Menu Sate Ayam added"}`, CreatedAt: now.Add(-150 * time.Minute)},
			{UserID: &chef, UserEmail: users[2].Email, ActionType: "STATUS_UPDATE", EntityType: "ORDER", EntityID: fmt.Sprint(orders[0].ID), Details: "Order started cooking", CreatedAt: now.Add(-20 * time.Minute)},
		}
		return tx.Create(&logs).Error
	})
}
