package docs

import "github.com/swaggo/swag"

// @title           Taskboard API
// @version         1.0
// @description     API for managing task boards, sections, tasks, and board membership

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description User registration, login, and dashboard

// @tag.name Boards
// @tag.description Board management, ordering, and favourites

// @tag.name Members
// @tag.description Board membership operations

// @tag.name Sections
// @tag.description Section management and ordering

// @tag.name Tasks
// @tag.description Task management, ordering, and moves

var instance = &swag.Spec{InfoInstanceName: swag.Name}

// Register swagger info
func SwaggerInfo() *swag.Spec {
	return instance
}
