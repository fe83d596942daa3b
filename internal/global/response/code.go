package response

var (
	ErrInvalidRequest = newError(400, "请求参数错误")
	ErrUnauthorized   = newError(401, "未登录或权限不足")
	ErrTokenInvalid   = newError(40101, "token 无效")
	ErrForbidden      = newError(403, "不是该挑战的参与者")
	ErrNotFound       = newError(404, "资源不存在")
	ErrNotReady       = newError(40901, "结算尚未完成，请在结束日次日零点后重试")
	ErrNotAssigned    = newError(40902, "不在分配名单中")
	ErrBusy           = newError(40904, "结算正在进行，请稍后重试")
	ErrInsufficient   = newError(40905, "积分余额不足")
	ErrDatabase       = newError(500, "数据库错误")
	ErrInternal       = newError(50001, "服务器内部错误")
)
