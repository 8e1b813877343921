package fees

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/config"
	"github.com/bkorir-git/Student-finance-management-system/app/database"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
	"github.com/bkorir-git/Student-finance-management-system/app/routes/auth"
)

type FeeStructureRequest struct {
	Grade        string `json:"grade" form:"grade"`
	Term         string `json:"term" form:"term"`
	FeeType      string `json:"fee_type" form:"fee_type"`
	Amount       string `json:"amount" form:"amount"`
	Description  string `json:"description" form:"description"`
	AcademicYear string `json:"academic_year" form:"academic_year"`
}

func (r *FeeStructureRequest) toModel() (*models.FeeStructure, string) {
	if r.Grade == "" || r.FeeType == "" {
		return nil, "grade and fee_type are required"
	}

	term := models.Term(r.Term)
	if !term.IsValid() {
		return nil, "Invalid term"
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, "Amount must be greater than zero"
	}

	return &models.FeeStructure{
		Grade:        strings.TrimSpace(r.Grade),
		Term:         term,
		FeeType:      strings.TrimSpace(r.FeeType),
		Amount:       amount,
		Description:  r.Description,
		AcademicYear: r.AcademicYear,
	}, ""
}

func GetFeeStructuresAPI(c *fiber.Ctx) error {
	filters := database.FeeStructureFilters{
		Grade:        c.Query("grade"),
		Term:         c.Query("term"),
		AcademicYear: c.Query("academic_year"),
	}

	fees, err := database.GetFeeStructures(config.GetDB(), filters)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch fee structures"})
	}

	return c.JSON(fiber.Map{
		"fee_structures": fees,
		"count":          len(fees),
	})
}

func GetFeeStructureAPI(c *fiber.Ctx) error {
	fee, err := database.GetFeeStructureByID(config.GetDB(), c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Fee structure not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch fee structure"})
	}
	return c.JSON(fee)
}

// GetFeeTotalAPI previews the total a student in the given grade would
// be charged, without touching any balance.
func GetFeeTotalAPI(c *fiber.Ctx) error {
	grade := c.Query("grade")
	if grade == "" {
		return c.Status(400).JSON(fiber.Map{"error": "grade is required"})
	}

	total, err := database.TotalFeesForGrade(config.GetDB(), grade, c.Query("term"), c.Query("academic_year"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to calculate fee total"})
	}

	return c.JSON(fiber.Map{
		"grade":      grade,
		"total":      total,
		"configured": !total.IsZero(),
	})
}

func CreateFeeStructureAPI(c *fiber.Ctx) error {
	var req FeeStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	fee, msg := req.toModel()
	if msg != "" {
		return c.Status(400).JSON(fiber.Map{"error": msg})
	}

	db := config.GetDB()
	if err := database.CreateFeeStructure(db, fee); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return c.Status(409).JSON(fiber.Map{"error": "A fee structure for this grade, term and fee type already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create fee structure"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     auth.CurrentActor(c),
		Action:     "create_fee_structure",
		EntityType: "fee_structure",
		EntityID:   fee.ID,
		Details:    "Created fee structure: " + fee.FeeType + " for Grade " + fee.Grade,
		IPAddress:  c.IP(),
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "fee_structure": fee})
}

func UpdateFeeStructureAPI(c *fiber.Ctx) error {
	var req FeeStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	fee, msg := req.toModel()
	if msg != "" {
		return c.Status(400).JSON(fiber.Map{"error": msg})
	}
	fee.ID = c.Params("id")

	db := config.GetDB()
	if _, err := database.GetFeeStructureByID(db, fee.ID); err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Fee structure not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch fee structure"})
	}

	if err := database.UpdateFeeStructure(db, fee); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return c.Status(409).JSON(fiber.Map{"error": "A fee structure for this grade, term and fee type already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update fee structure"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     auth.CurrentActor(c),
		Action:     "edit_fee_structure",
		EntityType: "fee_structure",
		EntityID:   fee.ID,
		Details:    "Updated fee structure: " + fee.FeeType + " for Grade " + fee.Grade,
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{"success": true, "fee_structure": fee})
}

// DeleteFeeStructureAPI deactivates the line item. Existing ledger
// entries that charged it are untouched.
func DeleteFeeStructureAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	id := c.Params("id")

	if err := database.SoftDeleteFeeStructure(db, id); err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Fee structure not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete fee structure"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     auth.CurrentActor(c),
		Action:     "delete_fee_structure",
		EntityType: "fee_structure",
		EntityID:   id,
		Details:    "Deactivated fee structure " + id,
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{"success": true, "message": "Fee structure deactivated"})
}
