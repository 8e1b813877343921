package students

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/config"
	"github.com/bkorir-git/Student-finance-management-system/app/database"
	"github.com/bkorir-git/Student-finance-management-system/app/ledger"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
	"github.com/bkorir-git/Student-finance-management-system/app/services"
)

type StudentRequest struct {
	FullName        string            `json:"full_name" form:"full_name"`
	Grade           string            `json:"grade" form:"grade"`
	GuardianName    string            `json:"guardian_name" form:"guardian_name"`
	GuardianContact string            `json:"guardian_contact" form:"guardian_contact"`
	GuardianEmail   string            `json:"guardian_email" form:"guardian_email"`
	Address         string            `json:"address" form:"address"`
	EnrollmentDate  models.CustomDate `json:"enrollment_date" form:"enrollment_date"`
	OpeningBalance  string            `json:"opening_balance" form:"opening_balance"`
	FromCatalog     bool              `json:"from_catalog" form:"from_catalog"`
}

func GetStudentsAPI(c *fiber.Ctx) error {
	filters := database.StudentFilters{
		Search: c.Query("search"),
		Grade:  c.Query("grade"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}

	students, totalCount, err := database.GetStudentsWithFilters(config.GetDB(), filters)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students":    students,
		"count":       len(students),
		"total_count": totalCount,
	})
}

func GetStudentAPI(c *fiber.Ctx) error {
	student, err := database.GetStudentByID(config.GetDB(), c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}
	return c.JSON(student)
}

// CreateStudentAPI creates a student with a zero balance, then seeds
// the opening balance if requested: either an explicit amount or the
// fee catalog total. Seeding always goes through the ledger.
func CreateStudentAPI(c *fiber.Ctx, svc *ledger.Service, catalog services.FeeCatalog) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.FullName == "" || req.Grade == "" || req.GuardianContact == "" {
		return c.Status(400).JSON(fiber.Map{"error": "full_name, grade and guardian_contact are required"})
	}

	// Validate the opening balance before the student row exists, so a
	// bad amount never leaves a half-created student behind.
	opening := decimal.Zero
	if req.OpeningBalance != "" {
		parsed, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid opening_balance"})
		}
		opening = parsed
	}

	db := config.GetDB()
	studentNumber, err := database.NextStudentNumber(db)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate student number"})
	}

	enrollment := req.EnrollmentDate.Time
	if enrollment.IsZero() {
		enrollment = time.Now()
	}

	student := &models.Student{
		StudentNumber:   studentNumber,
		FullName:        req.FullName,
		Grade:           req.Grade,
		GuardianName:    req.GuardianName,
		GuardianContact: req.GuardianContact,
		GuardianEmail:   req.GuardianEmail,
		Address:         req.Address,
		EnrollmentDate:  enrollment,
	}

	if err := database.CreateStudent(db, student); err != nil {
		log.Printf("Failed to create student: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create student"})
	}

	actor := auth.CurrentActor(c)
	balanceInitialized := false
	var initWarning string

	if !opening.IsZero() {
		if student.Balance, err = services.SeedOpeningBalance(c.Context(), svc, student.ID, opening, actor); err != nil {
			return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		balanceInitialized = true
	} else if req.FromCatalog {
		_, newBalance, err := services.InitializeFromCatalog(c.Context(), svc, catalog, student, "", "", actor)
		if err != nil {
			if errors.Is(err, services.ErrNoFeeStructure) {
				initWarning = "No fee structure defined for Grade " + student.Grade
			} else {
				return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
			}
		} else {
			student.Balance = newBalance
			balanceInitialized = true
		}
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     actor,
		Action:     "create_student",
		EntityType: "student",
		EntityID:   student.ID,
		Details:    "Created student: " + student.FullName,
		IPAddress:  c.IP(),
	})

	resp := fiber.Map{
		"success":             true,
		"student":             student,
		"balance_initialized": balanceInitialized,
	}
	if initWarning != "" {
		resp["warning"] = initWarning
	}
	return c.Status(201).JSON(resp)
}

func UpdateStudentAPI(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := config.GetDB()
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	student.FullName = req.FullName
	student.Grade = req.Grade
	student.GuardianName = req.GuardianName
	student.GuardianContact = req.GuardianContact
	student.GuardianEmail = req.GuardianEmail
	student.Address = req.Address
	if !req.EnrollmentDate.Time.IsZero() {
		student.EnrollmentDate = req.EnrollmentDate.Time
	}

	if err := database.UpdateStudent(db, student); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update student"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     auth.CurrentActor(c),
		Action:     "edit_student",
		EntityType: "student",
		EntityID:   student.ID,
		Details:    "Updated student: " + student.FullName,
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{"success": true, "student": student})
}

func DeleteStudentAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	if err := database.SoftDeleteStudent(db, student.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete student"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     auth.CurrentActor(c),
		Action:     "delete_student",
		EntityType: "student",
		EntityID:   student.ID,
		Details:    "Deleted student: " + student.FullName,
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{"success": true, "message": "Student " + student.FullName + " deleted successfully"})
}

// ApplyFeesAPI charges the student the catalog total for their grade.
func ApplyFeesAPI(c *fiber.Ctx, svc *ledger.Service, catalog services.FeeCatalog) error {
	type applyFeesRequest struct {
		Term         string `json:"term" form:"term"`
		AcademicYear string `json:"academic_year" form:"academic_year"`
	}
	var req applyFeesRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	db := config.GetDB()
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	actor := auth.CurrentActor(c)
	amount, newBalance, err := services.ApplyGradeFees(c.Context(), svc, catalog, student, req.Term, req.AcademicYear, actor)
	if err != nil {
		if errors.Is(err, services.ErrNoFeeStructure) {
			return c.Status(400).JSON(fiber.Map{
				"success": false,
				"message": "No fee structure defined for Grade " + student.Grade,
			})
		}
		return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     actor,
		Action:     "apply_fees",
		EntityType: "student",
		EntityID:   student.ID,
		Details:    "Applied fees of " + amount.String() + " to " + student.FullName,
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        "Fee structure applied successfully",
		"amount_applied": amount,
		"new_balance":    newBalance,
	})
}

// InitializeBalanceAPI seeds a student's opening balance, either with
// an explicit amount or from the fee catalog.
func InitializeBalanceAPI(c *fiber.Ctx, svc *ledger.Service, catalog services.FeeCatalog) error {
	type initRequest struct {
		Amount       string `json:"amount" form:"amount"`
		Term         string `json:"term" form:"term"`
		AcademicYear string `json:"academic_year" form:"academic_year"`
	}
	var req initRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	db := config.GetDB()
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	actor := auth.CurrentActor(c)
	var newBalance decimal.Decimal

	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid amount"})
		}
		newBalance, err = services.SeedOpeningBalance(c.Context(), svc, student.ID, amount, actor)
		if err != nil {
			return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
	} else {
		_, newBalance, err = services.InitializeFromCatalog(c.Context(), svc, catalog, student, req.Term, req.AcademicYear, actor)
		if err != nil {
			if errors.Is(err, services.ErrNoFeeStructure) {
				return c.Status(400).JSON(fiber.Map{
					"success": false,
					"message": "No fee structure defined for Grade " + student.Grade,
				})
			}
			return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     actor,
		Action:     "initialize_balance",
		EntityType: "student",
		EntityID:   student.ID,
		Details:    "Initialized balance for " + student.FullName + " to " + newBalance.String(),
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{"success": true, "new_balance": newBalance})
}

// GetStudentLedgerAPI returns the student's balance history, oldest first.
func GetStudentLedgerAPI(c *fiber.Ctx, svc *ledger.Service) error {
	studentID := c.Params("id")

	filter := ledger.HistoryFilter{
		ChangeType: ledger.ChangeType(c.Query("change_type")),
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date_from"})
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date_to"})
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	entries, err := svc.History(c.Context(), studentID, filter)
	if err != nil {
		return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	balance, err := svc.Balance(c.Context(), studentID)
	if err != nil {
		return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
		"balance": balance,
	})
}

// ledgerStatus maps ledger errors to HTTP status codes.
func ledgerStatus(err error) int {
	var vErr *ledger.ValidationError
	if errors.As(err, &vErr) {
		return fiber.StatusBadRequest
	}
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}
