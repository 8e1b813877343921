package payments

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
)

type PaymentRequest struct {
	StudentID            string            `json:"student_id" form:"student_id"`
	Amount               string            `json:"amount" form:"amount"`
	FeeType              string            `json:"fee_type" form:"fee_type"`
	PaymentMethod        string            `json:"payment_method" form:"payment_method"`
	PaymentDate          models.CustomDate `json:"payment_date" form:"payment_date"`
	TransactionReference string            `json:"transaction_reference" form:"transaction_reference"`
	Notes                string            `json:"notes" form:"notes"`
}

func GetPaymentsAPI(c *fiber.Ctx) error {
	filters := database.PaymentFilters{
		Search:   c.Query("search"),
		Method:   c.Query("method"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset", 0),
	}

	payments, totalCount, err := database.GetPaymentsWithFilters(config.GetDB(), filters)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}

	return c.JSON(fiber.Map{
		"payments":    payments,
		"count":       len(payments),
		"total_count": totalCount,
	})
}

func GetPaymentAPI(c *fiber.Ctx) error {
	payment, err := database.GetPaymentByID(config.GetDB(), c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Payment not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payment"})
	}
	return c.JSON(payment)
}

// CreatePaymentAPI records a payment against a student. The payment row,
// the balance decrease and the ledger entry commit in one transaction.
func CreatePaymentAPI(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.StudentID == "" || req.FeeType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "student_id and fee_type are required"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return c.Status(400).JSON(fiber.Map{"error": "Amount must be greater than zero"})
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid payment method"})
	}

	db := config.GetDB()
	student, err := database.GetStudentByID(db, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	paymentDate := req.PaymentDate.Time
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := &models.Payment{
		StudentID:            student.ID,
		Amount:               amount,
		FeeType:              req.FeeType,
		PaymentMethod:        method,
		PaymentDate:          paymentDate,
		TransactionReference: req.TransactionReference,
		ReceiptNumber:        models.GenerateReceiptNumber(),
		Notes:                req.Notes,
	}

	actor := auth.CurrentActor(c)
	newBalance, err := database.CreateStudentPayment(c.Context(), db, payment, actor)
	if err != nil {
		log.Printf("Failed to record payment for student %s: %v", student.ID, err)
		return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": "Failed to record payment"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     actor,
		Action:     "create_payment",
		EntityType: "payment",
		EntityID:   payment.ID,
		Details:    "Recorded payment " + payment.ReceiptNumber + " of " + amount.String() + " for " + student.FullName,
		IPAddress:  c.IP(),
	})

	return c.Status(201).JSON(fiber.Map{
		"success":     true,
		"payment":     payment,
		"new_balance": newBalance,
	})
}

// DeletePaymentAPI removes a payment. The student's balance is restored
// by a compensating ledger entry, never by editing history.
func DeletePaymentAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	actor := auth.CurrentActor(c)

	payment, newBalance, err := database.DeleteStudentPayment(c.Context(), db, c.Params("id"), actor)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Payment not found"})
		}
		log.Printf("Failed to delete payment %s: %v", c.Params("id"), err)
		return c.Status(ledgerStatus(err)).JSON(fiber.Map{"error": "Failed to delete payment"})
	}

	database.RecordSystemLog(db, &models.SystemLog{
		UserID:     actor,
		Action:     "delete_payment",
		EntityType: "payment",
		EntityID:   payment.ID,
		Details:    "Deleted payment " + payment.ReceiptNumber + " of " + payment.Amount.String(),
		IPAddress:  c.IP(),
	})

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Payment " + payment.ReceiptNumber + " deleted successfully",
		"new_balance": newBalance,
	})
}

// GetReceiptAPI returns the receipt payload: payment, student and the
// student's current balance.
func GetReceiptAPI(c *fiber.Ctx) error {
	db := config.GetDB()

	payment, err := database.GetPaymentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Payment not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch payment"})
	}

	student, err := database.GetStudentByID(db, payment.StudentID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	return c.JSON(fiber.Map{
		"payment":     payment,
		"student":     student,
		"balance":     student.Balance,
		"school_name": config.AppConfig.SchoolName,
		"currency":    config.AppConfig.Currency,
	})
}

func ShowReceiptPage(c *fiber.Ctx) error {
	payment, err := database.GetPaymentByID(config.GetDB(), c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).Render("404", fiber.Map{"Title": "Not Found - Student Finance"})
		}
		return c.Status(500).SendString("Failed to load receipt")
	}

	return c.Render("payments/receipt", fiber.Map{
		"Title":       "Receipt " + payment.ReceiptNumber + " - Student Finance",
		"CurrentPage": "payments",
		"Payment":     payment,
		"user":        c.Locals("user"),
	})
}

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
