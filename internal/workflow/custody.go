package workflow

import (
	"time"

	"epa-asset-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Các builder dưới đây sinh document $set cho item, dùng chung cho cả ba
// workflow để custody của item chỉ thay đổi theo đúng một số hình dạng cố định.

// ItemTouched chỉ đẩy updatedAt, không đổi trường custody nào.
// Đây là write khóa của LockItem: hai transaction cùng ghi lên một item
// sẽ conflict với nhau thay vì cùng commit.
func ItemTouched(now time.Time) bson.M {
	return bson.M{"$set": bson.M{"updatedAt": now}}
}

// ItemAssigned: item được phát cho custodian (Assignment ISSUED).
func ItemAssigned(now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"custody":      models.CustodyAssigned,
		"availability": models.AvailabilityAssigned,
		"updatedAt":    now,
	}}
}

// ReleaseAvailability tính availability sau khi item được trả: về AVAILABLE,
// trừ khi item đang bảo trì thì giữ nguyên MAINTENANCE.
func ReleaseAvailability(current string) string {
	if current == models.AvailabilityMaintenance {
		return models.AvailabilityMaintenance
	}
	return models.AvailabilityAvailable
}

// ItemReleased: item được trả lại (Assignment RETURNED, ReturnBatch receive).
func ItemReleased(currentAvailability string, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"custody":      models.CustodyUnassigned,
		"availability": ReleaseAvailability(currentAvailability),
		"updatedAt":    now,
	}}
}

// ItemInTransit: item rời office nguồn theo transfer (DispatchToStore).
func ItemInTransit(now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"custody":      models.CustodyInTransit,
		"availability": models.AvailabilityInTransit,
		"updatedAt":    now,
	}}
}

// ItemHeldAtStore: kho trung tâm nhận hàng, availability vẫn IN_TRANSIT.
func ItemHeldAtStore(storeID string, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"holder":    models.Holder{Type: models.HolderStore, ID: storeID},
		"updatedAt": now,
	}}
}

// ItemArrivedAtOffice: office đích nhận hàng (ReceiveAtDest).
func ItemArrivedAtOffice(officeID string, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"holder":       models.Holder{Type: models.HolderOffice, ID: officeID},
		"custody":      models.CustodyUnassigned,
		"availability": models.AvailabilityAvailable,
		"updatedAt":    now,
	}}
}

// ItemRolledBack: hủy/từ chối transfer sau khi hàng đã rời office nguồn,
// custody quay về đúng office nguồn như trước khi transfer bắt đầu.
func ItemRolledBack(sourceOfficeID string, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"holder":       models.Holder{Type: models.HolderOffice, ID: sourceOfficeID},
		"custody":      models.CustodyUnassigned,
		"availability": models.AvailabilityAvailable,
		"updatedAt":    now,
	}}
}
