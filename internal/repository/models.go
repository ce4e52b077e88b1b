package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Sanitized returns a copy without the password hash.
func (a Admin) Sanitized() Admin {
	a.Password = ""
	return a
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsBlocked bool               `bson:"isBlocked" json:"isBlocked"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderLine struct {
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
	Price    float64            `bson:"price"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	User          primitive.ObjectID `bson:"user"`
	Products      []OrderLine        `bson:"products"`
	TotalAmount   float64            `bson:"totalAmount"`
	PaymentStatus string             `bson:"paymentStatus"`
	OrderStatus   string             `bson:"orderStatus,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Images    []string           `bson:"images" json:"images"`
	Price     float64            `bson:"price" json:"price"`
	CreatedAt time.Time          `bson:"createdAt" json:"-"`
}

// UserRef is the buyer summary attached to an order view.
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// ProductRef is the product summary attached to an order line.
type ProductRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Images []string           `bson:"images" json:"images"`
	Price  float64            `bson:"price" json:"price"`
}

type OrderLineView struct {
	Product   *ProductRef        `json:"product"`
	ProductID primitive.ObjectID `json:"-"`
	Quantity  int                `json:"quantity"`
	Price     float64            `json:"price"`
}

// OrderView is an order with its buyer and products resolved. References
// that no longer resolve are left nil.
type OrderView struct {
	ID            primitive.ObjectID `json:"_id"`
	User          *UserRef           `json:"user"`
	UserID        primitive.ObjectID `json:"-"`
	Products      []OrderLineView    `json:"products"`
	TotalAmount   float64            `json:"totalAmount"`
	PaymentStatus string             `json:"paymentStatus"`
	OrderStatus   string             `json:"orderStatus,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type OrderStats struct {
	TotalOrders       int64   `bson:"totalOrders" json:"totalOrders"`
	TotalSpent        float64 `bson:"totalSpent" json:"totalSpent"`
	AverageOrderValue float64 `bson:"averageOrderValue" json:"averageOrderValue"`
}

type TopCustomer struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	TotalSpent float64            `bson:"totalSpent" json:"totalSpent"`
	OrderCount int64              `bson:"orderCount" json:"orderCount"`
}

type UserStats struct {
	TotalUsers        int64         `json:"totalUsers"`
	NewUsersThisMonth int64         `json:"newUsersThisMonth"`
	ActiveUsers       int64         `json:"activeUsers"`
	TopCustomers      []TopCustomer `json:"topCustomers"`
}
