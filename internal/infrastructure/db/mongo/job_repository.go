package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

const (
	collectionJobs     = "jobs"
	collectionCounters = "counters"
	jobSequenceKey     = "job_sequence"
)

// JobRepository implements ports.JobRepository on MongoDB.
type JobRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{
		col:      db.Collection(collectionJobs),
		counters: db.Collection(collectionCounters),
	}
}

// NextSequence atomically increments and returns the job sequence counter.
// The counter document serializes concurrent creations; numbers are strictly
// increasing and never reused.
func (r *JobRepository) NextSequence(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": jobSequenceKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new job document.
func (r *JobRepository) Create(ctx context.Context, j *domain.Job) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if j.ID == "" {
		j.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, j)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate job", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var j domain.Job
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &j, nil
}

// List returns a page of jobs matching the filter and the total count.
func (r *JobRepository) List(ctx context.Context, filter ports.ListJobsFilter) ([]*domain.Job, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Archived == nil {
		query["archived"] = false
	} else {
		query["archived"] = *filter.Archived
	}
	if filter.Assignee != "" {
		query["$or"] = []bson.M{
			{"assigned_operator": filter.Assignee},
			{"assigned_reviewer": filter.Assignee},
			{"assigned_lawyer": filter.Assignee},
		}
	}
	if filter.Search != "" {
		search := []bson.M{
			{"phone": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"brand_name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
		if seq, err := strconv.ParseInt(filter.Search, 10, 64); err == nil {
			search = append(search, bson.M{"sequence": seq})
		}
		if filter.Assignee != "" {
			// Both $or groups must hold.
			query["$and"] = []bson.M{{"$or": query["$or"]}, {"$or": search}}
			delete(query, "$or")
		} else {
			query["$or"] = search
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((filter.Page - 1) * filter.Limit)
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var jobs []*domain.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// Update merges the non-nil fields and refreshes updated_at.
func (r *JobRepository) Update(ctx context.Context, id string, upd ports.JobUpdate) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Surname != nil {
		set["surname"] = *upd.Surname
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.BrandName != nil {
		set["brand_name"] = *upd.BrandName
	}
	if upd.Classes != nil {
		set["classes"] = upd.Classes
	}

	var j domain.Job
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{"version": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return nil
}

// ApplyTransition performs the conditional write: status set, history append,
// optional reassignment/effect fields, and a version bump — all in one
// update filtered on {_id, version}. A version mismatch on an existing job
// is a lost race and returns domain.ErrConflict.
func (r *JobRepository) ApplyTransition(ctx context.Context, id string, expectedVersion int64, w ports.TransitionWrite) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{
		"status":     w.Status,
		"updated_at": now,
	}
	if w.BrandName != nil {
		set["brand_name"] = *w.BrandName
	}
	if w.Reviewer != nil {
		set["assigned_reviewer"] = *w.Reviewer
	}
	if w.Lawyer != nil {
		set["assigned_lawyer"] = *w.Lawyer
	}
	if w.ReviewResult != nil {
		set["review_result"] = w.ReviewResult
	}
	if w.Archive {
		set["archived"] = true
		set["archived_at"] = now
	}

	push := bson.M{"history": w.History}
	if w.Certificate != nil {
		push["certificates"] = *w.Certificate
	}

	update := bson.M{
		"$set":  set,
		"$push": push,
		"$inc":  bson.M{"version": int64(1)},
	}
	if w.ClearReviewResult && w.ReviewResult == nil {
		update["$unset"] = bson.M{"review_result": ""}
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "version": expectedVersion}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a stale version from a missing job.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: job %s version %d", domain.ErrConflict, id, expectedVersion)
	}
	return nil
}

func (r *JobRepository) AddInvoice(ctx context.Context, id string, inv domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"invoices": inv},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
			"$inc":  bson.M{"version": int64(1)},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *JobRepository) SetInvoiceReceipt(ctx context.Context, id string, index int, receiptRef string) error {
	return r.setInvoiceFields(ctx, id, bson.M{
		fmt.Sprintf("invoices.%d.receipt_ref", index): receiptRef,
		fmt.Sprintf("invoices.%d.status", index):      domain.InvoiceReceiptUploaded,
	})
}

func (r *JobRepository) SetInvoiceStatus(ctx context.Context, id string, index int, status domain.InvoiceStatus) error {
	return r.setInvoiceFields(ctx, id, bson.M{
		fmt.Sprintf("invoices.%d.status", index): status,
	})
}

func (r *JobRepository) setInvoiceFields(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields, "$inc": bson.M{"version": int64(1)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *JobRepository) SetDocuments(ctx context.Context, id string, docs domain.Documents, logoRef string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"documents":  docs,
		"updated_at": time.Now().UTC(),
	}
	if logoRef != "" {
		set["logo_ref"] = logoRef
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{"version": int64(1)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *JobRepository) ListTerminalUnarchived(ctx context.Context, olderThan time.Time) ([]*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{
		"status":     bson.M{"$in": []domain.JobStatus{domain.StatusFinished, domain.StatusRejected, domain.StatusLostContact}},
		"archived":   false,
		"updated_at": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var jobs []*domain.Job
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// EnsureIndexes creates the indexes the jobs collection relies on.
func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sequence", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_operator", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_reviewer", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_lawyer", Value: 1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
