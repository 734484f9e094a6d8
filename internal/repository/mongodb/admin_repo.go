package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"pintapoa/internal/domain"
)

type adminDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	Name         string        `bson:"name"`
	PasswordHash string        `bson:"passwordHash"`
	Salt         string        `bson:"salt"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

type adminRepository struct {
	coll collection
}

func NewAdminRepository(db *mongo.Database) domain.AdminRepository {
	return &adminRepository{coll: db.Collection(adminsCollection)}
}

func (r *adminRepository) Create(ctx context.Context, a *domain.Admin) error {
	const op = "mongodb.admins.Create"

	doc := adminDocument{
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Salt:         a.Salt,
		CreatedAt:    a.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const op = "mongodb.admins.GetByEmail"

	var doc adminDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &domain.Admin{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		Salt:         doc.Salt,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
