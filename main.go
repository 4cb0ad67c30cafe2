package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	gzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/socialcause/cause-api/routes"
	"github.com/socialcause/cause-api/utils"
)

func main() {
	// 获取当前执行文件的目录
	execDir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		log.Fatalf("Failed to get exec dir: %v", err)
	}

	// 优先从当前工作目录加载配置文件
	viper.SetConfigFile("config.yaml")
	if err := viper.ReadInConfig(); err != nil {
		// 如果当前目录找不到，再尝试从执行文件目录查找
		viper.SetConfigFile(filepath.Join(execDir, "config.yaml"))
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
	}

	// 初始化数据库
	db, err := utils.InitDatabase(
		viper.GetString("mysql.host"),
		viper.GetString("mysql.user"),
		viper.GetString("mysql.password"),
		viper.GetString("mysql.dbname"),
		viper.GetInt("mysql.port"),
	)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := utils.MigrateDatabase(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	// 设置 GIN 运行模式
	mode := viper.GetString("server.mode")
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()

	// 设置可信代理，消除安全警告
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// 添加必要的中间件
	router.Use(gin.Recovery())

	// 添加gzip压缩中间件
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 添加安全头部和CORS中间件
	router.Use(func(c *gin.Context) {
		// 安全头部
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")

		// CORS配置
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// 处理OPTIONS请求
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 初始化 API 路由
	apiRoutes := routes.NewAPIRoutes(db)
	apiRoutes.SetupRoutes(router)

	// 配置 HTTP 服务器
	port := viper.GetInt("server.port")
	addr := fmt.Sprintf(":%d", port) // 监听所有网络接口

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server running on http://localhost%s", addr)
	log.Printf("Server mode: %s", gin.Mode())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
