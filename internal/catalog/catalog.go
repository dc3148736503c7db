// Package catalog holds the built-in topic and book lists the spinner
// draws from.
package catalog

// Topics returns the closed topic catalog for the speech-on-topic flow.
func Topics() []string {
	return []string{
		"The Impact of Social Media on Society",
		"Artificial Intelligence and the Future of Work",
		"Climate Change and Individual Responsibility",
		"The Value of Travel",
		"Remote Work vs Office Culture",
		"The Role of Failure in Success",
		"Is Privacy Dead in the Digital Age?",
		"The Importance of Lifelong Learning",
		"Money and Happiness",
		"The Power of Habit",
		"Urban Life vs Rural Life",
		"The Ethics of Genetic Engineering",
		"Why We Procrastinate",
		"The Future of Space Exploration",
		"Art as a Mirror of Society",
		"The Meaning of Leadership",
	}
}

// Books returns the closed book catalog for the book-summary flow.
func Books() []string {
	return []string{
		"To Kill a Mockingbird",
		"1984",
		"The Great Gatsby",
		"Pride and Prejudice",
		"The Alchemist",
		"Sapiens: A Brief History of Humankind",
		"Atomic Habits",
		"The Catcher in the Rye",
		"Brave New World",
		"The Little Prince",
		"Thinking, Fast and Slow",
		"The Kite Runner",
		"Animal Farm",
		"Man's Search for Meaning",
		"The Midnight Library",
		"Educated",
	}
}
