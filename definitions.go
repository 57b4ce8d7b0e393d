package indexer

import (
	"agrimarket-api-io/api/internal/common"

	"go.mongodb.org/mongo-driver/mongo/options"
)

func named(name string) *options.IndexOptions {
	return options.Index().SetName(name)
}

// vendorIndexes backs the admin listing filters and the per-user lookups
// done on submission. Both vendor collections share them.
func vendorIndexes(m *Manager, collection string) {
	m.AddCompoundIndex(collection, []string{"status"}, named("status"))
	m.AddCompoundIndex(collection, []string{"address.city"}, named("address_city"))
	m.AddCompoundIndex(collection, []string{"address.state"}, named("address_state"))
	m.AddCompoundIndex(collection, []string{"-rating"}, named("rating_desc"))
	m.AddCompoundIndex(collection, []string{"is_available"}, named("is_available"))
	m.AddCompoundIndex(collection, []string{"user_id", "status"}, named("user_status"))
	m.AddCompoundIndex(collection, []string{"user_id", "-created_at"}, named("user_created_desc"))
	m.AddCompoundIndex(collection, []string{"user_id", "-application_version"}, named("user_version_desc"))
}

// Definitions returns every index the API relies on.
func Definitions() []IndexDefinition {
	m := NewManager(nil)

	vendorIndexes(m, common.FarmerCollection)
	vendorIndexes(m, common.DeliveryAgentCollection)

	m.AddCompoundIndex(common.OrderCollection, []string{"client_id", "-created_at"}, named("client_created_desc"))
	m.AddCompoundIndex(common.OrderCollection, []string{"farmer_id", "-created_at"}, named("farmer_created_desc"))
	m.AddCompoundIndex(common.OrderCollection, []string{"status"}, named("status"))
	m.AddCompoundIndex(common.OrderCollection, []string{"checkout_id"}, named("checkout"))

	m.AddCompoundIndex(common.ProductCollection, []string{"farmer_id", "is_available"}, named("farmer_available"))

	m.AddCompoundIndex(common.UserNotificationCollection, []string{"user_id", "is_read", "-created_at"}, named("user_read_created_desc"))
	m.AddCompoundIndex(common.UserNotificationCollection, []string{"user_id", "-priority_weight", "-created_at"}, named("user_priority_desc"))
	m.AddTTLIndex(common.UserNotificationCollection, "expires_at", 0)

	m.AddCompoundIndex(common.UserCollection, []string{"roles"}, named("roles"))

	return m.Indexes()
}

// LoadDefaults registers Definitions on the manager.
func (m *Manager) LoadDefaults() *Manager {
	return m.LoadFromDefinitions(Definitions())
}
