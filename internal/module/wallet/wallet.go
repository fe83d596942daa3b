package wallet

import (
	"errors"
	"time"

	"challenge-settlement-system/internal/global/jwt"
	"challenge-settlement-system/internal/global/logger"
	"challenge-settlement-system/internal/global/response"
	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/tools"

	"github.com/gin-gonic/gin"
)

type ChargeReq struct {
	Amount      *int64 `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=255"`
}

type historyView struct {
	PointHistoryID uint      `json:"point_history_id"`
	Type           string    `json:"type"`
	Amount         int64     `json:"amount"`
	BalanceAfter   int64     `json:"balance_after"`
	Description    string    `json:"description"`
	ChallengeID    *uint     `json:"challenge_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Charge 钱包充值，只记账不涉及结算
func Charge(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req ChargeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	h, err := ledger.Charge(c.Request.Context(), user.UserID, *req.Amount, req.Description)
	if err != nil {
		failWith(c, err)
		return
	}
	logger.WithContext(log, c).Info("钱包充值", "user_id", user.UserID, "amount", h.Amount, "balance_after", h.BalanceAfter)

	response.Success(c, gin.H{
		"user_id":             user.UserID,
		"charged_amount":      h.Amount,
		"point_balance_after": h.BalanceAfter,
		"history":             toView(h),
	})
}

func GetBalance(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	balance, err := ledger.Balance(c.Request.Context(), user.UserID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": user.UserID, "point_balance": balance})
}

// ListHistory 积分流水，按发生时间倒序
func ListHistory(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	page, offset, limit := tools.GetPage(c)
	list, total, err := ledger.History(c.Request.Context(), user.UserID, offset, limit)
	if err != nil {
		log.Error("查询积分流水失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	views := make([]historyView, 0, len(list))
	for i := range list {
		views = append(views, toView(&list[i]))
	}
	response.Success(c, gin.H{
		"page":      page,
		"page_size": limit,
		"total":     total,
		"records":   views,
	})
}

func toView(h *model.PointHistory) historyView {
	return historyView{
		PointHistoryID: h.ID,
		Type:           string(h.Type),
		Amount:         h.Amount,
		BalanceAfter:   h.BalanceAfter,
		Description:    h.Description,
		ChallengeID:    h.ChallengeID,
		OccurredAt:     h.OccurredAt,
	}
}

func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.Fail(c, response.ErrInvalidRequest.WithTips("amount 必须大于 0"))
	case errors.Is(err, ErrUserNotFound):
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
	case errors.Is(err, ErrInsufficientPoints):
		response.Fail(c, response.ErrInsufficient)
	default:
		log.Error("钱包操作失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
	}
}
