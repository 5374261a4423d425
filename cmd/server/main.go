package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/config"
	"tmm-bienestar/internal/handlers"
	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/services"
	"tmm-bienestar/internal/store"
	"tmm-bienestar/internal/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Pick the browser state store. Redis keeps carts and tokens across
	// restarts; the in-memory store is for development.
	var browserStore store.Store
	if cfg.Store.RedisAddr != "" {
		redisStore := store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(ctx)
		cancel()
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis at %s: %v", cfg.Store.RedisAddr, err)
			log.Println("Falling back to in-memory browser store")
			browserStore = store.NewMemoryStore(cfg.Store.TTL)
		} else {
			log.Println("Redis browser store connected")
			browserStore = redisStore
		}
	} else {
		browserStore = store.NewMemoryStore(cfg.Store.TTL)
	}

	// Create session store for the browser id cookie
	authKey, encKey := utils.DeriveSessionKeys(cfg.Session.Secret)
	sessionStore := sessions.NewCookieStore(authKey, encKey)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365, // the browser id should outlive the login
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)

	// Initialize the API client and services
	apiClient := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	authService := services.NewAuthService(apiClient, browserStore)
	cartService := services.NewCartService(browserStore)
	paymentService := services.NewPaymentFlowService(cfg.Bank, cfg.MercadoPago.PaymentLink)
	receiptProcessor := services.NewReceiptProcessor(cfg.Upload)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	loginLimiter := middleware.NewRateLimiter(5, 15*time.Minute)

	renderer, err := handlers.NewRenderer("web/templates")
	if err != nil {
		log.Fatal("Failed to load templates:", err)
	}

	csrf := sessionMiddleware.CSRFToken

	// Initialize handlers
	publicHandler := handlers.NewPublicHandler(apiClient, cartService, browserStore, renderer, csrf)
	authHandler := handlers.NewAuthHandler(apiClient, authService, cartService, renderer, csrf)
	cartHandler := handlers.NewCartHandler(apiClient, authService, cartService, paymentService, renderer, csrf)
	profileHandler := handlers.NewProfileHandler(authService, cartService, paymentService, renderer, csrf)
	paymentHandler := handlers.NewPaymentHandler(authService, cartService, paymentService, receiptProcessor, renderer, csrf)
	adminHandler := handlers.NewAdminHandler(authService, renderer, csrf)

	// Initialize router
	r := chi.NewRouter()

	// Basic middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	r.Use(sessionMiddleware.EnsureBrowserID)
	r.Use(authMiddleware.LoadSession)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static/"))))

	// Public routes
	r.Get("/", publicHandler.HomePage)
	r.Get("/nosotras", publicHandler.AboutPage)
	r.Get("/contacto", publicHandler.ContactPage)
	r.Post("/contacto", publicHandler.SubmitContact)
	r.Get("/cursos", publicHandler.CoursesPage)
	r.Get("/cursos/{id}", publicHandler.CourseDetailPage)
	r.Get("/talleres", publicHandler.WorkshopsPage)
	r.Get("/talleres/{id}", publicHandler.WorkshopDetailPage)
	r.Get("/kits", publicHandler.ProductsPage)
	r.Get("/kits/{id}", publicHandler.ProductDetailPage)
	r.Get("/blog", publicHandler.BlogPage)
	r.Get("/blog/{id}", publicHandler.PostDetailPage)
	r.Get("/calendario", publicHandler.CalendarPage)
	r.Post("/newsletter/visto", publicHandler.DismissNewsletter)
	r.Post("/resenas", publicHandler.SubmitReview)

	// Auth routes
	r.Get("/login", authHandler.LoginPage)
	r.With(middleware.RateLimitLogin(loginLimiter)).Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Get("/registro", authHandler.RegisterPage)
	r.Post("/registro", authHandler.Register)
	r.Get("/activar/{uid}/{token}", authHandler.Activate)
	r.Get("/recuperar", authHandler.ForgotPasswordPage)
	r.Post("/recuperar", authHandler.ForgotPassword)
	r.Get("/restablecer/{uid}/{token}", authHandler.ResetPasswordPage)
	r.Post("/restablecer/{uid}/{token}", authHandler.ResetPassword)

	// Cart routes. The cart itself works anonymously; checkout requires a
	// session.
	r.Route("/carrito", func(r chi.Router) {
		r.Get("/", cartHandler.CartPage)
		r.Post("/agregar", cartHandler.AddToCart)
		r.Post("/actualizar", cartHandler.UpdateCartItem)
		r.Post("/quitar", cartHandler.RemoveCartItem)
		r.Post("/vaciar", cartHandler.ClearCart)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", cartHandler.CheckoutPage)
		r.Post("/", cartHandler.Checkout)
	})

	// Profile routes
	r.Route("/perfil", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", profileHandler.ProfilePage)
		r.Post("/", profileHandler.UpdateProfile)
		r.Post("/inscribirse", profileHandler.Enroll)
		r.Post("/inscripciones/cancelar", profileHandler.CancelEnrollment)
		r.Post("/pagos", profileHandler.PayPending)
		r.Get("/pedidos/{id}", profileHandler.OrderDetailPage)
		r.Get("/certificados/{id}", profileHandler.DownloadCertificate)
	})

	// Enrollment entry point from catalog pages
	r.With(authMiddleware.RequireAuth).Post("/inscribirse", profileHandler.Enroll)

	// Payment flow routes
	r.Route("/pago/{flowID}", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/", paymentHandler.PaymentPage)
		r.Post("/metodo", paymentHandler.SelectMethod)
		r.Post("/subir", paymentHandler.GoToUpload)
		r.Post("/volver", paymentHandler.BackToBankDetails)
		r.Post("/comprobante", paymentHandler.UploadReceipt)
		r.Post("/cerrar", paymentHandler.Close)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.RequireAdmin)

		r.Get("/", adminHandler.Dashboard)
		r.Get("/ingresos", adminHandler.Revenue)

		r.Get("/cursos", adminHandler.Courses)
		r.Post("/cursos", adminHandler.CreateCourse)
		r.Post("/cursos/{id}", adminHandler.UpdateCourse)
		r.Post("/cursos/{id}/eliminar", adminHandler.DeleteCourse)

		r.Get("/talleres", adminHandler.Workshops)
		r.Post("/talleres", adminHandler.CreateWorkshop)
		r.Post("/talleres/{id}", adminHandler.UpdateWorkshop)
		r.Post("/talleres/{id}/eliminar", adminHandler.DeleteWorkshop)

		r.Get("/kits", adminHandler.Products)
		r.Post("/kits", adminHandler.CreateProduct)
		r.Post("/kits/{id}", adminHandler.UpdateProduct)
		r.Post("/kits/{id}/eliminar", adminHandler.DeleteProduct)

		r.Get("/blog", adminHandler.Posts)
		r.Post("/blog", adminHandler.CreatePost)
		r.Post("/blog/{id}", adminHandler.UpdatePost)
		r.Post("/blog/{id}/eliminar", adminHandler.DeletePost)

		r.Post("/intereses", adminHandler.CreateCategory)
		r.Post("/intereses/{id}/eliminar", adminHandler.DeleteCategory)

		r.Get("/mensajes", adminHandler.Messages)

		r.Get("/clientes", adminHandler.Clients)
		r.Get("/clientes/{id}", adminHandler.ClientDetail)
		r.Get("/clientes/exportar", adminHandler.ExportClientsCSV)
		r.Post("/clientes/importar", adminHandler.ImportClientsCSV)

		r.Get("/pagos", adminHandler.Transactions)
		r.Post("/pagos/{id}", adminHandler.ReviewTransaction)

		r.Get("/email", adminHandler.BulkEmailPage)
		r.Post("/email", adminHandler.SendBulkEmail)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"tmm-bienestar"}`))
	})

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s (Environment: %s)", serverAddr, cfg.Server.Env)
	log.Fatal(http.ListenAndServe(serverAddr, r))
}
