package i18n

// translations maps message key -> language -> text
var translations = map[string]map[Language]string{
	// Welcome Modal
	"welcomeTitle": {English: "Welcome to Aviator Predictor", Bengali: "এভিয়েটর প্রেডিক্টরে স্বাগতম"},
	"welcomeDesc1": {English: "This tool provides AI-powered analysis of game patterns to help you make informed decisions.", Bengali: "এই টুলটি আপনাকে অবগত সিদ্ধান্ত নিতে সাহায্য করার জন্য গেমের প্যাটার্নের AI-চালিত বিশ্লেষণ প্রদান করে।"},
	"welcomeDesc2": {English: "It is intended for informational purposes only and does not guarantee winnings. Play responsibly.", Bengali: "এটি শুধুমাত্র তথ্যমূলক উদ্দেশ্যে তৈরি এবং জয়ের নিশ্চয়তা দেয় না। দায়িত্বের সাথে খেলুন।"},
	"welcomeDesc3": {English: "By clicking \"Agree & Continue\", you acknowledge and accept these terms.", Bengali: "\"সম্মত হন এবং চালিয়ে যান\" এ ক্লিক করে, আপনি এই শর্তাবলী স্বীকার এবং গ্রহণ করছেন।"},
	"agreeButton":  {English: "Agree & Continue", Bengali: "সম্মত হন এবং চালিয়ে যান"},

	// Tabs
	"predictionTab": {English: "Prediction", Bengali: "পূর্বাভাস"},
	"historyTab":    {English: "History", Bengali: "ইতিহাস"},
	"settingsTab":   {English: "Settings", Bengali: "সেটিংস"},
	"aboutTab":      {English: "About", Bengali: "সম্পর্কে"},

	// Prediction Display
	"patternAnalysis":  {English: "Pattern Analysis", Bengali: "প্যাটার্ন বিশ্লেষণ"},
	"nextPrediction":   {English: "Next Round Prediction", Bengali: "পরবর্তী রাউন্ডের পূর্বাভাস"},
	"probabilities":    {English: "Probabilities", Bengali: "সম্ভাবনা"},
	"cashOutTarget":    {English: "Recommended Cash Out", Bengali: "প্রস্তাবিত ক্যাশ আউট"},
	"investmentAdvice": {English: "Investment Advice", Bengali: "বিনিয়োগ পরামর্শ"},
	"confidenceLevel":  {English: "Confidence Level", Bengali: "আত্মবিশ্বাসের স্তর"},
	"confidenceHigh":   {English: "High", Bengali: "উচ্চ"},
	"confidenceMedium": {English: "Medium", Bengali: "মাঝারি"},
	"confidenceLow":    {English: "Low", Bengali: "নিম্ন"},

	// History View
	"low":               {English: "Low", Bengali: "নিম্ন"},
	"medium":            {English: "Medium", Bengali: "মাঝারি"},
	"high":              {English: "High", Bengali: "উচ্চ"},
	"distribution":      {English: "Category Distribution", Bengali: "বিভাগ বন্টন"},
	"multiplierTrend":   {English: "Multiplier Trend", Bengali: "গুণক প্রবণতা"},
	"round":             {English: "Round", Bengali: "রাউন্ড"},
	"multiplier":        {English: "Multiplier", Bengali: "গুণক"},
	"multiplierHistory": {English: "Multiplier History", Bengali: "গুণকের ইতিহাস"},
	"category":          {English: "Category", Bengali: "বিভাগ"},

	// Controls
	"startAnalysis":   {English: "Start Live Analysis", Bengali: "লাইভ বিশ্লেষণ শুরু করুন"},
	"stopAnalysis":    {English: "Stop Analysis", Bengali: "বিশ্লেষণ বন্ধ করুন"},
	"enterMultiplier": {English: "Enter multiplier...", Bengali: "গুণক প্রবেশ করান..."},
	"add":             {English: "Add", Bengali: "যোগ করুন"},
	"manualEntry":     {English: "Manual", Bengali: "ম্যানুয়াল"},

	// Settings
	"language":            {English: "Language", Bengali: "ভাষা"},
	"captureArea":         {English: "Capture Area (ROI)", Bengali: "ক্যাপচার এলাকা (ROI)"},
	"currentArea":         {English: "Current", Bengali: "বর্তমান"},
	"setCaptureArea":      {English: "Set Capture Area", Bengali: "ক্যাপচার এলাকা সেট করুন"},
	"resetCaptureArea":    {English: "Reset", Bengali: "রিসেট"},
	"dragToSelect":        {English: "Click and drag to select the game's multiplier history area.", Bengali: "গেমের গুণক ইতিহাস এলাকা নির্বাচন করতে ক্লিক করুন এবং টেনে আনুন।"},
	"dataManagement":      {English: "Data Management", Bengali: "তথ্য ব্যবস্থাপনা"},
	"clearHistory":        {English: "Clear All History", Bengali: "সমস্ত ইতিহাস পরিষ্কার করুন"},
	"clearHistoryConfirm": {English: "Are you sure you want to clear all multiplier history? This action cannot be undone.", Bengali: "আপনি কি নিশ্চিত যে আপনি সমস্ত গুণকের ইতিহাস মুছে ফেলতে চান? এই ক্রিয়াটি ফিরিয়ে আনা যাবে না।"},

	// About
	"developer": {English: "Developer", Bengali: "ডেভেলপার"},
	"telegram":  {English: "Join our Telegram Channel", Bengali: "আমাদের টেলিগ্রাম চ্যানেলে যোগ দিন"},

	// Trends
	"trendIncreasing": {English: "Trending Up", Bengali: "ঊর্ধ্বমুখী"},
	"trendDecreasing": {English: "Trending Down", Bengali: "নিম্নমুখী"},
	"trendVolatile":   {English: "Volatile", Bengali: "অস্থির"},
	"trendStable":     {English: "Stable", Bengali: "স্থিতিশীল"},

	// Trend labels shown next to the prediction
	"trendNeutral": {English: "Neutral", Bengali: "নিরপেক্ষ"},

	// Server-side messages
	"ocrStatusIdle":         {English: "Idle", Bengali: "নিষ্ক্রিয়"},
	"ocrStatusInitializing": {English: "Initializing...", Bengali: "শুরু হচ্ছে..."},
	"ocrStatusActive":       {English: "Active", Bengali: "সক্রিয়"},
	"ocrStatusStopping":     {English: "Stopping...", Bengali: "বন্ধ হচ্ছে..."},
	"ocrStatusError":        {English: "Error", Bengali: "ত্রুটি"},
	"captureFailed":         {English: "Failed to start screen capture. Please grant permission.", Bengali: "স্ক্রিন ক্যাপচার শুরু করা যায়নি। অনুগ্রহ করে অনুমতি দিন।"},
	"invalidMultiplier":     {English: "Enter a positive multiplier.", Bengali: "একটি ধনাত্মক গুণক লিখুন।"},
}
