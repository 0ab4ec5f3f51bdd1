package dashboard

import (
	"github.com/gin-gonic/gin"
	_ "github.com/gm2211/hudson-dashboard/docs"
	"github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwagger 在 Gin 路由上注册 Swagger UI。
// 默认路由：/swagger/*any
//
// 使用示例：
//
//	r := gin.New()
//	dashboard.RegisterSwagger(r, "")
//
// 访问：http://localhost:6789/swagger/index.html
func RegisterSwagger(r gin.IRouter, path string) {
	if path == "" {
		path = "/swagger/*any"
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
