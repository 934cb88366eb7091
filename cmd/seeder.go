package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/property-management/internal/auth"
	paymentDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/payment"
	propertyDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/property"
	tenantDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/tenant"
	ticketDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/user"
	"github.com/frahmantamala/property-management/internal/rentshare"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedOwnerEmail = "owner@mail.com"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		dbs, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer dbs.Close()

		if clearData {
			if err := clearSeedData(dbs.Gorm); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := auth.HashPassword("password", cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		if err := dbs.Gorm.Transaction(func(tx *gorm.DB) error {
			return seed(tx, hash, time.Now().UTC())
		}); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
	},
}

func clearSeedData(db *gorm.DB) error {
	tables := []string{"payment_history", "payments", "tickets", "tenants", "properties", "users"}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func seed(tx *gorm.DB, passwordHash string, now time.Time) error {
	var existing userDatamodel.User
	err := tx.Where("email = ?", seedOwnerEmail).First(&existing).Error
	if err == nil {
		fmt.Println("owner user already exists; skipping seed (use --clear to reseed)")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	phone := "+1 555 0100"
	owner := userDatamodel.User{
		Email:        seedOwnerEmail,
		Name:         "Olivia Owner",
		PasswordHash: passwordHash,
		Phone:        &phone,
		IsActive:     true,
	}
	if err := tx.Create(&owner).Error; err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	fmt.Println("Seeded owner user:", owner.Email)

	flat := propertyDatamodel.Property{
		OwnerID: owner.ID,
		Name:    "Harbor View Apartment",
		Address: "12 Harbor Street",
		Rent:    decimal.NewFromInt(1500),
	}
	coLiving := propertyDatamodel.Property{
		OwnerID:    owner.ID,
		Name:       "Maple Co-living House",
		Address:    "48 Maple Avenue",
		Rent:       decimal.NewFromInt(3000),
		IsCoLiving: true,
	}
	for _, p := range []*propertyDatamodel.Property{&flat, &coLiving} {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("insert property %s: %w", p.Name, err)
		}
		fmt.Println("Seeded property:", p.Name)
	}

	leaseStart := monthStart(now).AddDate(0, -8, 0)
	share := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	email := func(s string) *string { return &s }

	tenants := []*tenantDatamodel.Tenant{
		{PropertyID: flat.ID, Name: "Tom Tenant", Email: email("tom@mail.com"), LeaseStartDate: leaseStart},
		{PropertyID: coLiving.ID, Name: "Ana Sharer", Email: email("ana@mail.com"), RentShare: share(40), LeaseStartDate: leaseStart},
		{PropertyID: coLiving.ID, Name: "Ben Sharer", Email: email("ben@mail.com"), RentShare: share(35), LeaseStartDate: leaseStart.AddDate(0, 2, 0)},
		{PropertyID: coLiving.ID, Name: "Cleo Sharer", RentShare: share(25), LeaseStartDate: leaseStart.AddDate(0, 4, 0)},
	}
	for _, t := range tenants {
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("insert tenant %s: %w", t.Name, err)
		}
	}
	fmt.Printf("Seeded %d tenants\n", len(tenants))

	if err := seedTickets(tx, []int64{flat.ID, coLiving.ID}, now); err != nil {
		return err
	}

	count := 0
	for back := 5; back >= 0; back-- {
		due := monthStart(now).AddDate(0, -back, 0).AddDate(0, 0, 4)
		for _, t := range tenants {
			if t.LeaseStartDate.After(due) {
				continue
			}
			p := seedPayment(t, flat, coLiving, due, back, now)
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("insert payment for %s: %w", t.Name, err)
			}
			count++
		}
	}
	fmt.Printf("Seeded %d payments\n", count)
	return nil
}

func seedPayment(t *tenantDatamodel.Tenant, flat, coLiving propertyDatamodel.Property, due time.Time, monthsBack int, now time.Time) *paymentDatamodel.Payment {
	p := &paymentDatamodel.Payment{
		TenantID:   t.ID,
		PropertyID: t.PropertyID,
		DueDate:    due,
		Status:     paymentDatamodel.StatusPending,
		Amount:     flat.Rent,
	}

	if t.PropertyID == coLiving.ID {
		internet := decimal.NewFromInt(60)
		electricity := decimal.NewFromInt(90)
		total := coLiving.Rent
		p.IsCoLivingShare = true
		p.SharePercentage = t.RentShare
		p.ShareTotalRent = &total
		p.ChargeInternet = &internet
		p.ChargeElectricity = &electricity
		amount, err := rentshare.ComputeShareAmount(total, *t.RentShare, rentshare.CommonCharges{
			Internet:    &internet,
			Electricity: &electricity,
		})
		if err == nil {
			p.Amount = amount
		}
	}

	switch {
	case monthsBack > 0 && !(monthsBack == 1 && t.Email == nil):
		paid := due.AddDate(0, 0, -1)
		method := "bank_transfer"
		p.Status = paymentDatamodel.StatusPaid
		p.PaidDate = &paid
		p.PaymentMethod = &method
	case due.Before(now):
		p.Status = paymentDatamodel.StatusLate
	}
	return p
}

func seedTickets(tx *gorm.DB, propertyIDs []int64, now time.Time) error {
	titles := []string{"Leaking tap", "Broken heater", "Door lock sticks", "Wifi outage"}
	statuses := []string{ticketDatamodel.StatusResolved, ticketDatamodel.StatusClosed, ticketDatamodel.StatusOpen, ticketDatamodel.StatusInProgress}

	for back := 5; back >= 0; back-- {
		created := monthStart(now).AddDate(0, -back, 0).AddDate(0, 0, 9)
		for i, propertyID := range propertyIDs {
			idx := (back + i) % len(titles)
			t := ticketDatamodel.Ticket{
				PropertyID: propertyID,
				Title:      titles[idx],
				Status:     statuses[idx],
				CreatedAt:  created,
			}
			if t.Status == ticketDatamodel.StatusResolved || t.Status == ticketDatamodel.StatusClosed {
				resolved := created.AddDate(0, 0, 3)
				t.ResolvedAt = &resolved
			}
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("insert ticket: %w", err)
			}
		}
	}
	fmt.Println("Seeded maintenance tickets")
	return nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
