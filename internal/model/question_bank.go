package model

// DefaultQuestions is the canonical questionnaire seeded at startup.
var DefaultQuestions = []Question{
	{ID: "q1", Category: "problem_solving", Position: 1, Text: "Describe how you approach a complex problem you have never seen before."},
	{ID: "q2", Category: "teamwork", Position: 2, Text: "Tell us about a time you worked closely with a team to reach a shared goal."},
	{ID: "q3", Category: "initiative", Position: 3, Text: "Describe a situation where you took action without being asked."},
	{ID: "q4", Category: "work_preference", Position: 4, Text: "What kind of work environment helps you do your best work?"},
	{ID: "q5", Category: "motivation", Position: 5, Text: "What motivates you most in your professional life?"},
	{ID: "q6", Category: "communication", Position: 6, Text: "How do you explain a difficult idea to someone without your background?"},
	{ID: "q7", Category: "leadership", Position: 7, Text: "Describe a moment when you had to lead others through uncertainty."},
	{ID: "q8", Category: "growth", Position: 8, Text: "Which skill are you currently working to improve, and how?"},
	{ID: "q9", Category: "creativity", Position: 9, Text: "Tell us about an unconventional solution you came up with."},
	{ID: "q10", Category: "resilience", Position: 10, Text: "How do you respond when a project you care about fails?"},
}
