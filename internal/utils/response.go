package utils

import (
	"github.com/gin-gonic/gin"
)

// OK 返回 200 和数据
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Fail 返回纯状态码，不带响应体
// 对外只暴露失败类别，不泄露内部错误细节
func Fail(c *gin.Context, code int) {
	c.Status(code)
}
