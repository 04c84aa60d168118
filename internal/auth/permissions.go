package auth

import "slices"

// Permission tokens granted to back-office accounts.
const (
	PermOrdersView     = "orders_view"
	PermOrdersEdit     = "orders_edit"
	PermOrdersDelete   = "orders_delete"
	PermOrdersExport   = "orders_export"
	PermToursView      = "tours_view"
	PermToursEdit      = "tours_edit"
	PermHotelsView     = "hotels_view"
	PermHotelsEdit     = "hotels_edit"
	PermVouchersView   = "vouchers_view"
	PermVouchersEdit   = "vouchers_edit"
	PermUsersView      = "users_view"
	PermUsersEdit      = "users_edit"
	PermStatisticsView = "statistics_view"
	PermAuditView      = "audit_view"
)

// AllPermissions lists every known token, e.g. for seeding an administrator.
var AllPermissions = []string{
	PermOrdersView, PermOrdersEdit, PermOrdersDelete, PermOrdersExport,
	PermToursView, PermToursEdit,
	PermHotelsView, PermHotelsEdit,
	PermVouchersView, PermVouchersEdit,
	PermUsersView, PermUsersEdit,
	PermStatisticsView, PermAuditView,
}

// KnownPermission reports whether p is a recognised token.
func KnownPermission(p string) bool {
	return slices.Contains(AllPermissions, p)
}
