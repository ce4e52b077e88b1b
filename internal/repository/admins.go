package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminExists reports whether an admin with the given hex id is stored.
// A malformed id is reported as not existing.
func (s *Store) AdminExists(ctx context.Context, adminID string) (exists bool, err error) {
	oid, err := ParseID(adminID)
	if err != nil {
		return false, nil
	}
	start := time.Now()
	defer func() { s.observe(CollectionAdmins, "exists", start, err) }()

	n, err := s.coll(CollectionAdmins).CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count admin: %w", err)
	}
	return n > 0, nil
}

func (s *Store) FindAdminByEmail(ctx context.Context, email string) (admin Admin, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionAdmins, "find_one", start, err) }()

	err = s.coll(CollectionAdmins).FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err != nil {
		return Admin{}, notFound(err)
	}
	return admin, nil
}

func (s *Store) FindAdminByID(ctx context.Context, adminID string) (admin Admin, err error) {
	oid, err := ParseID(adminID)
	if err != nil {
		return Admin{}, ErrNotFound
	}
	start := time.Now()
	defer func() { s.observe(CollectionAdmins, "find_one", start, err) }()

	err = s.coll(CollectionAdmins).FindOne(ctx, bson.M{"_id": oid}).Decode(&admin)
	if err != nil {
		return Admin{}, notFound(err)
	}
	return admin, nil
}

// CreateAdmin inserts a new admin. The caller supplies the password hash.
func (s *Store) CreateAdmin(ctx context.Context, admin Admin) (created Admin, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionAdmins, "insert", start, err) }()

	now := time.Now().UTC()
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.CreatedAt, admin.UpdatedAt = now, now
	if _, err = s.coll(CollectionAdmins).InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Admin{}, ErrDuplicate
		}
		return Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	return admin, nil
}

// UpdateAdminProfile sets fields on the admin and returns the stored result.
func (s *Store) UpdateAdminProfile(ctx context.Context, adminID string, fields map[string]any) (admin Admin, err error) {
	oid, err := ParseID(adminID)
	if err != nil {
		return Admin{}, ErrNotFound
	}
	start := time.Now()
	defer func() { s.observe(CollectionAdmins, "update", start, err) }()

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})
	err = s.coll(CollectionAdmins).FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&admin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Admin{}, ErrDuplicate
		}
		return Admin{}, notFound(err)
	}
	return admin, nil
}

func (s *Store) UpdateAdminPassword(ctx context.Context, adminID, hash string) (err error) {
	oid, err := ParseID(adminID)
	if err != nil {
		return ErrNotFound
	}
	start := time.Now()
	defer func() { s.observe(CollectionAdmins, "update", start, err) }()

	res, err := s.coll(CollectionAdmins).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password":  hash,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
