package i18n

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

var supportedLanguages = []Language{
	{Code: "en", Name: "English", Flag: "🇺🇸"},
	{Code: "es", Name: "Español", Flag: "🇪🇸"},
}

// catalog 是静态的翻译表：语言代码 -> 以点分隔的键 -> 文本
var catalog = map[string]map[string]string{
	"en": {
		"common.welcome":  "Welcome",
		"common.login":    "Login",
		"common.logout":   "Logout",
		"common.settings": "Settings",
		"common.back":     "Back",
		"common.next":     "Next",
		"common.save":     "Save",
		"common.cancel":   "Cancel",
		"common.loading":  "Loading...",

		"auth.employeeId":         "Employee ID",
		"auth.companyCode":        "Company Code",
		"auth.biometricLogin":     "Use Biometric Login",
		"auth.loginButton":        "Sign In",
		"auth.invalidCredentials": "Invalid credentials",

		"dashboard.goodMorning":      "Good Morning",
		"dashboard.goodAfternoon":    "Good Afternoon",
		"dashboard.goodEvening":      "Good Evening",
		"dashboard.trainingProgress": "Training Progress",
		"dashboard.dailyGoal":        "Daily Goal",
		"dashboard.recentBadges":     "Recent Badges",
		"dashboard.quickActions":     "Quick Actions",
		"dashboard.scanMachine":      "Scan Machine",
		"dashboard.startTraining":    "Start Training",
		"dashboard.safetyCheck":      "Safety Check",

		"training.modules":      "Training Modules",
		"training.inProgress":   "In Progress",
		"training.completed":    "Completed",
		"training.notStarted":   "Not Started",
		"training.startModule":  "Start Module",
		"training.resumeModule": "Resume Module",

		"api.sessionState":      "Session state",
		"api.loginSuccess":      "Signed in",
		"api.logoutSuccess":     "Signed out",
		"api.notAuthenticated":  "Not signed in",
		"api.invalidToken":      "Invalid token",
		"api.profile":           "Profile",
		"api.dashboard":         "Dashboard",
		"api.progressUpdated":   "Progress updated",
		"api.safetyCheckPassed": "All safety protocols are up to date!",
		"api.languages":         "Available languages",
		"api.languageChanged":   "Language changed",
		"api.translation":       "Translation",
		"api.invalidRequest":    "Invalid request body",
		"api.internalError":     "Internal server error",
	},
	"es": {
		"common.welcome":  "Bienvenido",
		"common.login":    "Iniciar Sesión",
		"common.logout":   "Cerrar Sesión",
		"common.settings": "Configuración",
		"common.back":     "Atrás",
		"common.next":     "Siguiente",
		"common.save":     "Guardar",
		"common.cancel":   "Cancelar",
		"common.loading":  "Cargando...",

		"auth.employeeId":         "ID de Empleado",
		"auth.companyCode":        "Código de Empresa",
		"auth.biometricLogin":     "Usar Inicio de Sesión Biométrico",
		"auth.loginButton":        "Iniciar Sesión",
		"auth.invalidCredentials": "Credenciales inválidas",

		"dashboard.goodMorning":      "Buenos Días",
		"dashboard.goodAfternoon":    "Buenas Tardes",
		"dashboard.goodEvening":      "Buenas Noches",
		"dashboard.trainingProgress": "Progreso de Entrenamiento",
		"dashboard.dailyGoal":        "Meta Diaria",
		"dashboard.recentBadges":     "Insignias Recientes",
		"dashboard.quickActions":     "Acciones Rápidas",
		"dashboard.scanMachine":      "Escanear Máquina",
		"dashboard.startTraining":    "Comenzar Entrenamiento",
		"dashboard.safetyCheck":      "Control de Seguridad",

		"training.modules":      "Módulos de Entrenamiento",
		"training.inProgress":   "En Progreso",
		"training.completed":    "Completado",
		"training.notStarted":   "No Iniciado",
		"training.startModule":  "Iniciar Módulo",
		"training.resumeModule": "Continuar Módulo",

		"api.sessionState":      "Estado de la sesión",
		"api.loginSuccess":      "Sesión iniciada",
		"api.logoutSuccess":     "Sesión cerrada",
		"api.notAuthenticated":  "No ha iniciado sesión",
		"api.invalidToken":      "Token inválido",
		"api.profile":           "Perfil",
		"api.dashboard":         "Panel",
		"api.progressUpdated":   "Progreso actualizado",
		"api.safetyCheckPassed": "¡Todos los protocolos de seguridad están al día!",
		"api.languages":         "Idiomas disponibles",
		"api.languageChanged":   "Idioma cambiado",
		"api.translation":       "Traducción",
		"api.invalidRequest":    "Cuerpo de solicitud inválido",
		"api.internalError":     "Error interno del servidor",
	},
}
