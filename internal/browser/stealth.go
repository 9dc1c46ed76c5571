package browser

// StealthScript hides the most common automation signals from page scripts.
// It runs before any document script on every navigation.
const StealthScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});

window.chrome = { runtime: {} };

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications' ?
		Promise.resolve({ state: Notification.permission }) :
		originalQuery(parameters)
);
`

// StealthArgs are the Chrome flags used for every session
var StealthArgs = map[string]interface{}{
	"disable-blink-features":   "AutomationControlled",
	"no-sandbox":               true,
	"disable-dev-shm-usage":    true,
	"disable-gpu":              true,
	"no-first-run":             true,
	"no-default-browser-check": true,
}
