package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	intdb "habittracker/internal/db"
	"habittracker/internal/hateoas"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "habittracker berjalan"})
}

// DBCheck pings the database and reports tables the migrations have not
// created yet.
func DBCheck(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database belum terhubung", nil)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			respondError(c, http.StatusServiceUnavailable, "db_unavailable", "gagal ping database", err.Error())
			return
		}
		missing, err := intdb.CheckSchema(ctx, db)
		if err != nil {
			respondError(c, http.StatusServiceUnavailable, "db_unavailable", "gagal cek schema", err.Error())
			return
		}
		if len(missing) > 0 {
			respondError(c, http.StatusServiceUnavailable, "schema_pending", "migrasi belum dijalankan", missing)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK"})
	}
}

// Routes lists the named routes link generation can resolve.
func Routes(table *hateoas.RouteTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := table.Routes()
		out := make([]gin.H, 0, len(routes))
		for _, rt := range routes {
			out = append(out, gin.H{
				"controller": rt.Controller,
				"action":     rt.Action,
				"method":     rt.Method,
				"path":       rt.Path,
			})
		}
		c.JSON(http.StatusOK, gin.H{"routes": out})
	}
}
