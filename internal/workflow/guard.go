package workflow

import (
	"context"
	"fmt"
	"time"

	"epa-asset-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mỗi item chỉ được có tối đa một operation "mở" tại một thời điểm:
// không thể vừa có Assignment mở vừa nằm trong Transfer/ReturnBatch mở.
// Guard PHẢI được gọi bên trong chính transaction thực hiện Create, và phải
// đi kèm LockItem: transaction Mongo là snapshot isolation và chỉ phát hiện
// xung đột khi hai bên ghi cùng một document, nên hai Create song song mà chỉ
// đếm rồi insert document mới thì cả hai đều commit (write skew).

var openTransferStatuses = []string{
	models.TransferRequested,
	models.TransferApproved,
	models.TransferDispatchedToStore,
	models.TransferReceivedAtStore,
	models.TransferDispatchedToDest,
}

var openReturnBatchStatuses = []string{
	models.ReturnBatchSubmitted,
	models.ReturnBatchReceivedConfirmed,
}

// OpenAssignmentFilter lọc các Assignment còn mở trên một item.
func OpenAssignmentFilter(itemID string) bson.M {
	return bson.M{
		"itemID": itemID,
		"status": bson.M{"$in": models.OpenAssignmentStatuses},
	}
}

// OpenTransferFilter lọc các Transfer còn mở có chứa item này,
// kể cả bản ghi legacy chỉ có itemID đơn lẻ.
func OpenTransferFilter(itemID string) bson.M {
	return bson.M{
		"status": bson.M{"$in": openTransferStatuses},
		"$or": []bson.M{
			{"lines.itemID": itemID},
			{"itemID": itemID},
		},
	}
}

// OpenReturnBatchFilter lọc các ReturnBatch còn mở có chứa item này.
func OpenReturnBatchFilter(itemID string) bson.M {
	return bson.M{
		"status":       bson.M{"$in": openReturnBatchStatuses},
		"lines.itemID": itemID,
	}
}

// LockItem ghi một write vô hại lên chính document item trước khi guard đếm.
// Hai Create chạy song song trên cùng item vì thế buộc phải conflict: bên
// thua bị WriteConflict, được driver retry, và lần chạy lại sẽ thấy operation
// vừa commit của bên thắng qua các count phía dưới.
func LockItem(ctx context.Context, db *mongo.Database, itemID string) error {
	result, err := db.Collection("items").UpdateOne(ctx, bson.M{"itemID": itemID}, ItemTouched(time.Now()))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("item %s not found", itemID)
	}
	return nil
}

// AssertNoOpenOperation khóa item rồi kiểm tra cả ba collection; trả lỗi nêu
// rõ loại operation đang chặn. Gọi với sessCtx khi đứng trong transaction.
func AssertNoOpenOperation(ctx context.Context, db *mongo.Database, itemID string) error {
	if err := LockItem(ctx, db, itemID); err != nil {
		return err
	}

	n, err := db.Collection("assignments").CountDocuments(ctx, OpenAssignmentFilter(itemID))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("item %s already has an open assignment", itemID)
	}

	n, err = db.Collection("transfers").CountDocuments(ctx, OpenTransferFilter(itemID))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("item %s is a line in an open transfer", itemID)
	}

	n, err = db.Collection("return_batches").CountDocuments(ctx, OpenReturnBatchFilter(itemID))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("item %s is a line in an open return batch", itemID)
	}

	return nil
}
