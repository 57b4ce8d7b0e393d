package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"agrimarket-api-io/api/config"
	"agrimarket-api-io/api/internal"
	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const applicationStatsCacheKey = "stats:applications"

var vendorRoles = []models.VendorRole{models.VendorFarmer, models.VendorDeliveryAgent}

type ApplicationServiceImpl struct {
	client        *mongo.Client
	db            *mongo.Database
	users         *mongo.Collection
	rdb           *redis.Client
	publisher     *internal.Publisher
	notifications NotificationService
	versionPolicy config.VersionPolicy
	statsTTL      time.Duration
	now           func() time.Time
}

func NewApplicationService(cfg *config.Config, db *mongo.Database, rdb *redis.Client, publisher *internal.Publisher, notifications NotificationService) ApplicationService {
	return &ApplicationServiceImpl{
		client:        db.Client(),
		db:            db,
		users:         db.Collection(common.UserCollection),
		rdb:           rdb,
		publisher:     publisher,
		notifications: notifications,
		versionPolicy: cfg.ApplicationVersionPolicy,
		statsTTL:      cfg.StatsCacheTTL,
		now:           time.Now,
	}
}

func (as *ApplicationServiceImpl) collection(role models.VendorRole) *mongo.Collection {
	return as.db.Collection(common.VendorCollection(role))
}

func (as *ApplicationServiceImpl) SubmitFarmerApplication(ctx context.Context, userID primitive.ObjectID, req models.FarmerApplicationRequest) (*models.Farmer, error) {
	return submitApplication(ctx, as, userID, models.VendorFarmer, req.ApplicationInput, func(p models.VendorProfile) *models.Farmer {
		details := req.FarmDetails
		details.FarmName = strings.TrimSpace(details.FarmName)
		details.Slug = farmSlug(details.FarmName, p.ID)
		return &models.Farmer{VendorProfile: p, FarmDetails: details}
	})
}

func (as *ApplicationServiceImpl) SubmitDeliveryAgentApplication(ctx context.Context, userID primitive.ObjectID, req models.DeliveryAgentApplicationRequest) (*models.DeliveryAgent, error) {
	return submitApplication(ctx, as, userID, models.VendorDeliveryAgent, req.ApplicationInput, func(p models.VendorProfile) *models.DeliveryAgent {
		return &models.DeliveryAgent{
			VendorProfile:  p,
			VehicleDetails: req.VehicleDetails,
			ServiceArea:    req.ServiceArea,
		}
	})
}

// submitApplication stores a new pending profile unless any of the user's
// profiles for role still blocks resubmission.
func submitApplication[T any](ctx context.Context, as *ApplicationServiceImpl, userID primitive.ObjectID, role models.VendorRole, in models.ApplicationInput, build func(models.VendorProfile) *T) (*T, error) {
	methods, err := NormalizePaymentMethods(in.PaymentMethods)
	if err != nil {
		return nil, err
	}
	coll := as.collection(role)

	var profileID primitive.ObjectID
	callback := func(sc mongo.SessionContext) (any, error) {
		now := as.now().UTC()

		// Writing the applicant makes concurrent submissions by the same user
		// conflict, so only one of them commits.
		res, err := as.users.UpdateOne(sc, bson.M{"_id": userID}, bson.M{"$set": bson.M{"last_application_at": now}})
		if err != nil {
			return nil, errors.Wrap(err, "lock applicant")
		}
		if res.MatchedCount == 0 {
			return nil, classify(ErrNotFound, errors.New("applicant account not found"))
		}

		previousVersion, err := latestVersion(sc, coll, userID, role)
		if err != nil {
			return nil, err
		}

		profile := newVendorProfile(userID, role, in, methods, nextApplicationVersion(as.versionPolicy, previousVersion), now)
		doc := build(profile)
		if _, err := coll.InsertOne(sc, doc); err != nil {
			return nil, errors.Wrap(err, "insert application")
		}
		profileID = profile.ID
		return doc, nil
	}

	result, err := ExecuteTransaction(ctx, as.client, callback)
	if err != nil {
		return nil, domainError(err)
	}

	as.afterSubmit(ctx, userID, profileID, role, in.DisplayName)
	return result.(*T), nil
}

// latestVersion returns the highest version among the user's profiles, or
// zero. It fails with ErrConflict while any profile still blocks resubmission,
// whatever its version.
func latestVersion(ctx context.Context, coll *mongo.Collection, userID primitive.ObjectID, role models.VendorRole) (int, error) {
	var active models.VendorProfile
	err := coll.FindOne(ctx, blockingApplicationFilter(userID)).Decode(&active)
	if err == nil {
		return 0, classify(ErrConflict, errors.Errorf("a %s application with status %s already exists", role, active.Status))
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, errors.Wrap(err, "find active application")
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "application_version", Value: -1}}).
		SetProjection(bson.M{"application_version": 1})

	var previous models.VendorProfile
	err = coll.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&previous)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "find previous application")
	}
	return previous.ApplicationVersion, nil
}

// blockingApplicationFilter matches the user's profiles whose status
// prevents another application.
func blockingApplicationFilter(userID primitive.ObjectID) bson.M {
	blocking := bson.A{}
	for _, st := range models.AllApplicationStatuses {
		if st.BlocksResubmission() {
			blocking = append(blocking, st)
		}
	}
	return bson.M{"user_id": userID, "status": bson.M{"$in": blocking}}
}

func nextApplicationVersion(policy config.VersionPolicy, previous int) int {
	if policy == config.VersionFixed {
		return 1
	}
	return previous + 1
}

func newVendorProfile(userID primitive.ObjectID, role models.VendorRole, in models.ApplicationInput, methods []models.PaymentMethod, version int, now time.Time) models.VendorProfile {
	docs := make([]models.Document, 0, len(in.Documents))
	for _, d := range in.Documents {
		docs = append(docs, models.NewDocument(d, now))
	}
	contacts := in.ContactInfo
	if contacts == nil {
		contacts = []models.ContactInfo{}
	}

	return models.VendorProfile{
		ID:                 primitive.NewObjectID(),
		UserID:             userID,
		Role:               role,
		DisplayName:        strings.TrimSpace(in.DisplayName),
		Address:            in.Address.Normalize(),
		ContactInfo:        contacts,
		Documents:          docs,
		PaymentMethods:     methods,
		Status:             models.ApplicationPending,
		ApplicationVersion: version,
		SubmittedAt:        now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// farmSlug suffixes the name slug with the tail of the profile id so two
// farms with the same name never collide.
func farmSlug(name string, id primitive.ObjectID) string {
	hex := id.Hex()
	base := slug.Make(name)
	if base == "" {
		return "farm-" + hex[len(hex)-6:]
	}
	return base + "-" + hex[len(hex)-6:]
}

func (as *ApplicationServiceImpl) afterSubmit(ctx context.Context, userID, profileID primitive.ObjectID, role models.VendorRole, displayName string) {
	as.invalidateStats(ctx)
	if err := as.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateApplication, profileID.Hex()); err != nil {
		util.LogError("failed to publish application invalidation", err)
	}

	id := profileID
	nt := models.NotificationApplicationSubmitted
	sent, err := as.notifications.EmitToRole(ctx, nt.TargetRole(), models.UserNotificationRequest{
		Type:              nt,
		Title:             "New vendor application",
		Message:           fmt.Sprintf("%s submitted a %s application.", displayName, roleLabel(role)),
		Data:              map[string]any{"applicationId": profileID.Hex(), "applicantId": userID.Hex(), "role": role},
		RelatedEntityID:   &id,
		RelatedEntityType: "application",
	})
	if err != nil {
		util.LogError("failed to notify admins of new application", err)
		return
	}
	util.WithFields(logrus.Fields{"application_id": profileID.Hex(), "role": role, "admins": sent}).Info("application submitted")
}

func (as *ApplicationServiceImpl) GetMyApplications(ctx context.Context, userID primitive.ObjectID, role models.VendorRole) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "application_version", Value: -1},
		{Key: "created_at", Value: -1},
	})

	cursor, err := as.collection(role).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find applications")
	}
	defer cursor.Close(ctx)

	applications := make([]models.Application, 0)
	if err := cursor.All(ctx, &applications); err != nil {
		return nil, errors.Wrap(err, "decode applications")
	}
	return applications, nil
}

func (as *ApplicationServiceImpl) GetApplication(ctx context.Context, actor Actor, id primitive.ObjectID, role models.VendorRole) (*models.Application, error) {
	app, _, err := as.findApplication(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && app.UserID != actor.UserID {
		return nil, classify(ErrForbidden, errors.New("application belongs to another user"))
	}
	return app, nil
}

// findApplication searches the collection for role, or both when role is empty.
func (as *ApplicationServiceImpl) findApplication(ctx context.Context, id primitive.ObjectID, role models.VendorRole) (*models.Application, *mongo.Collection, error) {
	roles := vendorRoles
	if role != "" {
		roles = []models.VendorRole{role}
	}

	for _, r := range roles {
		coll := as.collection(r)
		var app models.Application
		err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
		if err == nil {
			return &app, coll, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, errors.Wrap(err, "find application")
		}
	}
	return nil, nil, classify(ErrNotFound, errors.Errorf("application %s not found", id.Hex()))
}

func (as *ApplicationServiceImpl) ListApplications(ctx context.Context, filter models.ApplicationFilter, pagination util.PaginationArgs) ([]models.Application, int64, error) {
	match := applicationFilterBson(filter)
	sort := util.GetSortBson(pagination.Sort)
	limit := pagination.Limit
	if limit <= 0 {
		limit = common.DEFAULT_PAGE_LIMIT
	}

	if filter.Role != "" {
		opts := options.Find().SetSort(sort).SetSkip(int64(pagination.Skip)).SetLimit(int64(limit))
		return countAndFind[models.Application](ctx, as.collection(filter.Role), match, opts)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unionWith", Value: bson.M{
			"coll":     common.VendorCollection(models.VendorDeliveryAgent),
			"pipeline": bson.A{bson.M{"$match": match}},
		}}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$facet", Value: bson.M{
			"data":  bson.A{bson.M{"$skip": pagination.Skip}, bson.M{"$limit": limit}},
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	}

	cursor, err := as.collection(models.VendorFarmer).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, errors.Wrap(err, "aggregate applications")
	}
	defer cursor.Close(ctx)

	var pages []struct {
		Data  []models.Application `bson:"data"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, 0, errors.Wrap(err, "decode applications")
	}

	applications := make([]models.Application, 0)
	var total int64
	if len(pages) > 0 {
		if pages[0].Data != nil {
			applications = pages[0].Data
		}
		if len(pages[0].Total) > 0 {
			total = pages[0].Total[0].Count
		}
	}
	return applications, total, nil
}

func applicationFilterBson(f models.ApplicationFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if city := strings.TrimSpace(f.City); city != "" {
		filter["address.city"] = exactFold(city)
	}
	if state := strings.TrimSpace(f.State); state != "" {
		filter["address.state"] = exactFold(state)
	}
	return filter
}

func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

func (as *ApplicationServiceImpl) ApplicationStats(ctx context.Context) (models.ApplicationStats, error) {
	if stats, ok := as.cachedStats(ctx); ok {
		return stats, nil
	}

	stats := models.NewApplicationStats()
	group := mongo.Pipeline{{{Key: "$group", Value: bson.M{
		"_id":   "$status",
		"count": bson.M{"$sum": 1},
	}}}}

	for _, role := range vendorRoles {
		cursor, err := as.collection(role).Aggregate(ctx, group)
		if err != nil {
			return stats, errors.Wrapf(err, "count %s applications", role)
		}

		var rows []struct {
			Status models.ApplicationStatus `bson:"_id"`
			Count  int64                    `bson:"count"`
		}
		err = cursor.All(ctx, &rows)
		cursor.Close(ctx)
		if err != nil {
			return stats, errors.Wrapf(err, "decode %s counts", role)
		}
		for _, row := range rows {
			stats.Add(role, row.Status, row.Count)
		}
	}

	as.cacheStats(ctx, stats)
	return stats, nil
}

func (as *ApplicationServiceImpl) cachedStats(ctx context.Context) (models.ApplicationStats, bool) {
	var stats models.ApplicationStats
	if as.rdb == nil || as.statsTTL <= 0 {
		return stats, false
	}

	raw, err := as.rdb.Get(ctx, applicationStatsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			util.LogError("failed to read application stats cache", err)
		}
		return stats, false
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		util.LogError("discarding corrupt application stats cache", err)
		return stats, false
	}
	return stats, true
}

func (as *ApplicationServiceImpl) cacheStats(ctx context.Context, stats models.ApplicationStats) {
	if as.rdb == nil || as.statsTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		util.LogError("failed to encode application stats", err)
		return
	}
	util.LogError("failed to cache application stats", as.rdb.Set(ctx, applicationStatsCacheKey, raw, as.statsTTL).Err())
}

func (as *ApplicationServiceImpl) invalidateStats(ctx context.Context) {
	if as.rdb != nil {
		util.LogError("failed to drop application stats cache", as.rdb.Del(ctx, applicationStatsCacheKey).Err())
	}
	if err := as.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateApplicationStats, applicationStatsCacheKey); err != nil {
		util.LogError("failed to publish stats invalidation", err)
	}
}

// ReviewApplication applies an admin decision. The status write only lands
// if nobody changed the status since it was read, and the applicant's account
// roles change in the same transaction.
func (as *ApplicationServiceImpl) ReviewApplication(ctx context.Context, reviewerID, id primitive.ObjectID, role models.VendorRole, req models.ReviewApplicationRequest) (*models.Application, error) {
	var event *models.ApplicationEvent

	callback := func(sc mongo.SessionContext) (any, error) {
		app, coll, err := as.findApplication(sc, id, role)
		if err != nil {
			return nil, err
		}

		from := app.Status
		ev, err := models.ApplyReview(&app.VendorProfile, req, reviewerID, as.now().UTC())
		if err != nil {
			return nil, err
		}

		if err := compareAndSwap(sc, coll, app.ID, "status", from, reviewUpdate(app.VendorProfile)); err != nil {
			return nil, err
		}
		if err := as.syncUserRole(sc, app.UserID, app.Role, app.Status, app.UpdatedAt); err != nil {
			return nil, err
		}

		event = ev
		return app, nil
	}

	result, err := ExecuteTransaction(ctx, as.client, callback)
	if err != nil {
		return nil, domainError(err)
	}

	app := result.(*models.Application)
	as.afterReview(ctx, event)
	return app, nil
}

func reviewUpdate(p models.VendorProfile) bson.M {
	return bson.M{
		"status":       p.Status,
		"admin_review": p.AdminReview,
		"documents":    p.Documents,
		"is_available": p.IsAvailable,
		"approved_at":  p.ApprovedAt,
		"rejected_at":  p.RejectedAt,
		"suspended_at": p.SuspendedAt,
		"updated_at":   p.UpdatedAt,
	}
}

// syncUserRole grants the vendor role on approval and withdraws it on suspension.
func (as *ApplicationServiceImpl) syncUserRole(ctx context.Context, userID primitive.ObjectID, role models.VendorRole, status models.ApplicationStatus, now time.Time) error {
	if status != models.ApplicationApproved && status != models.ApplicationSuspended {
		return nil
	}

	var user models.User
	err := as.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return classify(ErrNotFound, errors.New("applicant account not found"))
	}
	if err != nil {
		return errors.Wrap(err, "find applicant")
	}

	update, changed := roleUpdate(user, role.UserRole(), status, now)
	if !changed {
		return nil
	}
	if _, err := as.users.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return errors.Wrap(err, "update applicant roles")
	}
	return nil
}

// roleUpdate builds the account change for a review outcome. A client whose
// application is approved is promoted to the vendor role; a suspended vendor
// falls back to client.
func roleUpdate(user models.User, granted models.UserRole, status models.ApplicationStatus, now time.Time) (bson.M, bool) {
	set := bson.M{"updated_at": now}

	switch status {
	case models.ApplicationApproved:
		if user.HasRole(granted) && user.Role != models.RoleClient {
			return nil, false
		}
		if user.Role == models.RoleClient {
			set["role"] = granted
		}
		return bson.M{"$addToSet": bson.M{"roles": granted}, "$set": set}, true
	case models.ApplicationSuspended:
		if !user.HasRole(granted) {
			return nil, false
		}
		if user.Role == granted {
			set["role"] = models.RoleClient
		}
		return bson.M{"$pull": bson.M{"roles": granted}, "$set": set}, true
	default:
		return nil, false
	}
}

func (as *ApplicationServiceImpl) afterReview(ctx context.Context, event *models.ApplicationEvent) {
	as.invalidateStats(ctx)
	if err := as.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateApplication, event.ApplicationID.Hex()); err != nil {
		util.LogError("failed to publish application invalidation", err)
	}
	if event.Status == models.ApplicationApproved || event.Status == models.ApplicationSuspended {
		if err := as.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateVendor, event.ApplicantID.Hex()); err != nil {
			util.LogError("failed to publish vendor invalidation", err)
		}
	}

	if _, err := as.notifications.Emit(ctx, event.ApplicantID, applicationNotification(event)); err != nil {
		util.LogError("failed to notify applicant", err)
	}

	util.WithFields(logrus.Fields{
		"application_id": event.ApplicationID.Hex(),
		"decision":       event.Decision,
		"status":         event.Status,
		"reviewer":       event.ReviewedBy.Hex(),
	}).Info("application reviewed")
}

func applicationNotification(ev *models.ApplicationEvent) models.UserNotificationRequest {
	label := roleLabel(ev.Role)

	var title, message string
	switch ev.Status {
	case models.ApplicationApproved:
		title = "Application approved"
		message = fmt.Sprintf("Your %s application has been approved.", label)
	case models.ApplicationRejected:
		title = "Application rejected"
		message = fmt.Sprintf("Your %s application was rejected: %s", label, ev.RejectionReason)
	case models.ApplicationSuspended:
		title = "Account suspended"
		message = fmt.Sprintf("Your %s account has been suspended.", label)
	default:
		title = "Application under review"
		message = fmt.Sprintf("An admin is reviewing your %s application.", label)
	}
	if ev.Remarks != "" {
		message += " Remarks: " + ev.Remarks
	}

	id := ev.ApplicationID
	return models.UserNotificationRequest{
		Type:    ev.Type,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"applicationId":   ev.ApplicationID.Hex(),
			"applicantId":     ev.ApplicantID.Hex(),
			"decision":        ev.Decision,
			"remarks":         ev.Remarks,
			"rejectionReason": ev.RejectionReason,
		},
		RelatedEntityID:   &id,
		RelatedEntityType: "application",
	}
}

func roleLabel(role models.VendorRole) string {
	if role == models.VendorDeliveryAgent {
		return "delivery agent"
	}
	return "farmer"
}

func (as *ApplicationServiceImpl) UpdateAvailability(ctx context.Context, userID primitive.ObjectID, role models.VendorRole, available bool) error {
	coll := as.collection(role)
	res, err := coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "status": models.ApplicationApproved},
		bson.M{"$set": bson.M{"is_available": available, "updated_at": as.now().UTC()}},
	)
	if err != nil {
		return errors.Wrap(err, "update availability")
	}
	if res.MatchedCount > 0 {
		if err := as.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateVendor, userID.Hex()); err != nil {
			util.LogError("failed to publish vendor invalidation", err)
		}
		return nil
	}

	count, err := coll.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return errors.Wrap(err, "count applications")
	}
	if count == 0 {
		return classify(ErrNotFound, errors.Errorf("no %s profile found", role))
	}
	return classify(ErrConflict, errors.New("only approved vendors can change availability"))
}

// RateDeliveryAgent folds rating into the agent's running average atomically.
func (as *ApplicationServiceImpl) RateDeliveryAgent(ctx context.Context, raterID, agentID primitive.ObjectID, rating float64) (*models.DeliveryAgent, error) {
	if rating < 1 || rating > 5 {
		return nil, classify(ErrBadRequest, errors.New("rating must be between 1 and 5"))
	}

	agents := as.collection(models.VendorDeliveryAgent)

	var agent models.DeliveryAgent
	if err := agents.FindOne(ctx, bson.M{"_id": agentID}).Decode(&agent); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, classify(ErrNotFound, errors.New("delivery agent not found"))
		}
		return nil, errors.Wrap(err, "find delivery agent")
	}
	if agent.UserID == raterID {
		return nil, classify(ErrForbidden, errors.New("delivery agents cannot rate themselves"))
	}
	if agent.Status != models.ApplicationApproved {
		return nil, classify(ErrConflict, errors.New("only approved delivery agents can be rated"))
	}

	current := bson.M{"$ifNull": bson.A{"$rating", 0}}
	count := bson.M{"$ifNull": bson.A{"$rating_count", 0}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"rating": bson.M{"$round": bson.A{
			bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{current, count}}, rating}},
				bson.M{"$add": bson.A{count, 1}},
			}},
			2,
		}},
		"rating_count": bson.M{"$add": bson.A{count, 1}},
		"updated_at":   as.now().UTC(),
	}}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.DeliveryAgent
	err := agents.FindOneAndUpdate(ctx, bson.M{"_id": agentID, "status": models.ApplicationApproved}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, classify(ErrConflict, errors.New("delivery agent status changed"))
	}
	if err != nil {
		return nil, errors.Wrap(err, "rate delivery agent")
	}
	return &updated, nil
}
