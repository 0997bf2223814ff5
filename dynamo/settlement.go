package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type paymentOrderDynamo struct {
	PK             string
	SK             string
	OrderID        string
	EventID        uuid.UUID
	Email          string
	AmountMinor    int64
	AmountCurrency string
	CreatedAt      time.Time
}

type settlementAttemptDynamo struct {
	PK          string
	SK          string
	OrderID     string
	PaymentID   string
	Result      registration.AttemptResult
	ProcessedAt time.Time
}

const (
	orderEntityName   = "ORDER"
	attemptEntityName = "ATTEMPT"
)

func orderPK(orderId string) string {
	return fmt.Sprintf("%s#%s", orderEntityName, orderId)
}

func orderSK(orderId string) string {
	return fmt.Sprintf("%s#%s", orderEntityName, orderId)
}

func attemptSK(paymentId string) string {
	return fmt.Sprintf("%s#%s", attemptEntityName, paymentId)
}

func orderToDynamo(order registration.PaymentOrder) paymentOrderDynamo {
	return paymentOrderDynamo{
		PK:             orderPK(order.ID),
		SK:             orderSK(order.ID),
		OrderID:        order.ID,
		EventID:        order.EventID,
		Email:          order.Email,
		AmountMinor:    order.Amount.Amount(),
		AmountCurrency: order.Amount.Currency().Code,
		CreatedAt:      order.CreatedAt,
	}
}

func dynamoToOrder(dynOrder paymentOrderDynamo) registration.PaymentOrder {
	return registration.PaymentOrder{
		ID:        dynOrder.OrderID,
		EventID:   dynOrder.EventID,
		Email:     dynOrder.Email,
		Amount:    money.New(dynOrder.AmountMinor, dynOrder.AmountCurrency),
		CreatedAt: dynOrder.CreatedAt,
	}
}

func attemptToDynamo(attempt registration.SettlementAttempt) settlementAttemptDynamo {
	return settlementAttemptDynamo{
		PK:          orderPK(attempt.OrderID),
		SK:          attemptSK(attempt.PaymentID),
		OrderID:     attempt.OrderID,
		PaymentID:   attempt.PaymentID,
		Result:      attempt.Result,
		ProcessedAt: attempt.ProcessedAt,
	}
}

func orderPutItem(tableName string, order registration.PaymentOrder) (*types.Put, error) {
	item, err := attributevalue.MarshalMap(orderToDynamo(order))
	if err != nil {
		return nil, registration.NewFailedToTranslateToDBModelError("Failed to translate payment order to dynamo model", err)
	}
	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()))

	return &types.Put{
		TableName:                 aws.String(tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func attemptPutItem(tableName string, attempt registration.SettlementAttempt) (*types.Put, error) {
	item, err := attributevalue.MarshalMap(attemptToDynamo(attempt))
	if err != nil {
		return nil, registration.NewFailedToTranslateToDBModelError("Failed to translate settlement attempt to dynamo model", err)
	}

	// The ledger guard: the put fails if this (order, payment) pair was
	// already recorded, which makes the whole transaction fail.
	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(expression.Name("SK").AttributeNotExists()))

	return &types.Put{
		TableName:                 aws.String(tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func (d *DB) GetPaymentOrder(ctx context.Context, orderId string) (registration.PaymentOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: orderPK(orderId)},
			"SK": &types.AttributeValueMemberS{Value: orderSK(orderId)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.PaymentOrder{}, registration.NewTimeoutError("GetPaymentOrder timed out")
		}
		return registration.PaymentOrder{}, registration.NewFailedToFetchError(fmt.Sprintf("Failed to fetch payment order %q", orderId), err)
	}

	if len(resp.Item) == 0 {
		return registration.PaymentOrder{}, registration.NewUnknownOrderError(fmt.Sprintf("Payment order %q not found", orderId), nil)
	}

	var dynOrder paymentOrderDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &dynOrder)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal payment order from dynamo: %s", err))
	}

	return dynamoToOrder(dynOrder), nil
}

// SettleRegistration commits the ledger entry and the registration's new
// status in one TransactWriteItems call. Two racing deliveries of the same
// payment both reach here; dynamo's conditional on the attempt item lets
// exactly one commit, the loser gets REASON_ATTEMPT_ALREADY_RECORDED.
func (d *DB) SettleRegistration(ctx context.Context, reg registration.Registration, attempt registration.SettlementAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	attemptPut, err := attemptPutItem(d.tableName, attempt)
	if err != nil {
		return err
	}

	dynamoReg := registrationToDynamo(reg)
	regItem, err := attributevalue.MarshalMap(dynamoReg)
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate registration to dynamo model", err)
	}
	regExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(dynamoReg.Version)))

	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: attemptPut,
			},
			{
				Put: &types.Put{
					TableName:                 aws.String(d.tableName),
					Item:                      regItem,
					ConditionExpression:       regExpr.Condition(),
					ExpressionAttributeNames:  regExpr.Names(),
					ExpressionAttributeValues: regExpr.Values(),
				},
			},
		},
	})
	if err != nil {
		var transactionFailedErr *types.TransactionCanceledException
		if errors.As(err, &transactionFailedErr) {
			reasons := transactionFailedErr.CancellationReasons
			if len(reasons) > 0 && reasons[0].Code != nil && *reasons[0].Code == "ConditionalCheckFailed" {
				return registration.NewAttemptAlreadyRecordedError(
					fmt.Sprintf("Settlement attempt for order %q payment %q already recorded", attempt.OrderID, attempt.PaymentID), err)
			}
			return registration.NewFailedToWriteError("Version conflict error settling registration", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("SettleRegistration timed out")
		}
		return registration.NewFailedToWriteError("Failed TransactWriteItems call", err)
	}

	return nil
}

func (d *DB) RecordRejectedAttempt(ctx context.Context, attempt registration.SettlementAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(attemptToDynamo(attempt))
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate settlement attempt to dynamo model", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(expression.Name("SK").AttributeNotExists()))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return registration.NewAttemptAlreadyRecordedError(
				fmt.Sprintf("Settlement attempt for order %q payment %q already recorded", attempt.OrderID, attempt.PaymentID), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("RecordRejectedAttempt timed out")
		}
		return registration.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}
