package settlement

import (
	"errors"
	"fmt"
	"strconv"

	"challenge-settlement-system/internal/global/jwt"
	"challenge-settlement-system/internal/global/logger"
	"challenge-settlement-system/internal/global/response"
	"challenge-settlement-system/internal/module/settlement/distribute"
	"challenge-settlement-system/internal/module/wallet"

	"github.com/gin-gonic/gin"
)

func challengeIDValidator(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("挑战ID不合法"))
		return 0, false
	}
	return uint(id), true
}

// GetStatus 奖励状态，结算到期后第一次查询会触发结算
func GetStatus(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	challengeID, ok := challengeIDValidator(c)
	if !ok {
		return
	}
	view, err := engine.Status(c.Request.Context(), challengeID, user.UserID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, view)
}

// Claim 领取奖励，重复领取返回第一次的领取时间
func Claim(c *gin.Context) {
	user, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	challengeID, ok := challengeIDValidator(c)
	if !ok {
		return
	}
	res, err := engine.Claim(c.Request.Context(), challengeID, user.UserID)
	if err != nil {
		failWith(c, err)
		return
	}
	if !res.AlreadyClaimed {
		logger.WithContext(log, c).Info("领取结算奖励",
			"challenge_id", challengeID,
			"user_id", user.UserID,
			"credited", res.CreditedPoints,
		)
	}
	response.Success(c, res)
}

// Run 管理员手动结算，已冻结时直接返回
func Run(c *gin.Context) {
	challengeID, ok := challengeIDValidator(c)
	if !ok {
		return
	}
	st, err := engine.Run(c.Request.Context(), challengeID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, st)
}

// Export 管理员导出分配明细
func Export(c *gin.Context) {
	challengeID, ok := challengeIDValidator(c)
	if !ok {
		return
	}
	f, err := engine.Export(c.Request.Context(), challengeID)
	if err != nil {
		failWith(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("settlement_%d.xlsx", challengeID)
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Cache-Control", "must-revalidate")
	if err = f.Write(c.Writer); err != nil {
		log.Error("写出 excel 失败", "error", err)
	}
}

func failWith(c *gin.Context, err error) {
	var unknown *distribute.UnknownMethodError
	switch {
	case errors.Is(err, ErrNotFound):
		response.Fail(c, response.ErrNotFound.WithTips("挑战不存在"))
	case errors.Is(err, ErrNotReady):
		response.Fail(c, response.ErrNotReady)
	case errors.Is(err, ErrForbidden):
		response.Fail(c, response.ErrForbidden)
	case errors.Is(err, ErrNotAssigned):
		response.Fail(c, response.ErrNotAssigned)
	case errors.Is(err, ErrBusy):
		response.Fail(c, response.ErrBusy)
	case errors.Is(err, wallet.ErrUserNotFound):
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
	case errors.Is(err, wallet.ErrInsufficientPoints):
		response.Fail(c, response.ErrInsufficient)
	case errors.As(err, &unknown):
		log.Error("结算方式配置错误", "error", err)
		response.Fail(c, response.ErrInternal.WithOrigin(err))
	default:
		log.Error("结算操作失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
	}
}
