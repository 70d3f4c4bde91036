package records

import "time"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SamplePosts returns the posts a fresh blog starts with
func SamplePosts() []Post {
	return []Post{
		{
			ID:         "1",
			Title:      "Getting Started with React",
			Date:       mustTime("2023-05-15T12:00:00Z"),
			Excerpt:    "Learn the basics of React and how to set up your first application with create-react-app.",
			CoverImage: "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=800",
			Content: "<p>React is a JavaScript library for building user interfaces.</p>" +
				"<h2>Why React?</h2><p>Design simple views for each state in your application.</p>" +
				"<h2>Setting up your environment</h2><p>The easiest way to get started is Create React App.</p>",
			Comments: []Comment{
				{ID: "101", UserName: "ReactFan", Text: "Great introduction! Looking forward to more React tutorials.", Date: mustTime("2023-05-16T08:30:00Z")},
			},
			Reactions: Reactions{ReactionLove: 12, ReactionLike: 8, ReactionLaugh: 0, ReactionWow: 3, ReactionSad: 0},
			Likes:     24,
		},
		{
			ID:         "2",
			Title:      "CSS Grid vs Flexbox",
			Date:       mustTime("2023-04-22T15:30:00Z"),
			Excerpt:    "Understanding when to use CSS Grid and when to use Flexbox for modern web layouts.",
			CoverImage: "https://images.unsplash.com/photo-1507721999472-8ed4421c4af2?w=800",
			Content: "<p>CSS Grid Layout and CSS Flexbox Layout are two powerful layout systems.</p>" +
				"<h2>Flexbox: One-dimensional layouts</h2><p>Flexbox lays items out in a row or a column.</p>" +
				"<h2>Grid: Two-dimensional layouts</h2><p>Grid handles rows and columns together.</p>",
			Comments:  []Comment{},
			Reactions: Reactions{ReactionLove: 8, ReactionLike: 14, ReactionLaugh: 0, ReactionWow: 2, ReactionSad: 0},
			Likes:     18,
		},
		{
			ID:         "3",
			Title:      "My Trip to Japan",
			Date:       mustTime("2023-06-10T09:15:00Z"),
			Excerpt:    "Exploring the beautiful landscapes and culture of Japan during cherry blossom season.",
			CoverImage: "https://images.unsplash.com/photo-1493976040374-85c8e12f0c0e?w=800",
			Content: "<p>Japan blends ancient traditions with modern life.</p>" +
				"<h2>Tokyo</h2><p>From Shibuya to the Imperial Palace gardens.</p>" +
				"<h2>Kyoto</h2><p>The Arashiyama Bamboo Grove was magical.</p>" +
				"<h2>Food</h2><p>From delicate sushi to hearty ramen.</p>",
			Comments: []Comment{
				{ID: "301", UserName: "TravelLover", Text: "Great photos! Japan is on my bucket list.", Date: mustTime("2023-06-11T14:20:00Z")},
			},
			Reactions: Reactions{ReactionLove: 15, ReactionLike: 10, ReactionLaugh: 0, ReactionWow: 8, ReactionSad: 0},
			Likes:     33,
		},
	}
}

// SampleTravelEntries returns the places a fresh travel map starts with
func SampleTravelEntries() []TravelEntry {
	return []TravelEntry{
		{
			ID:          "1",
			Name:        "Toronto, Canada",
			Date:        mustTime("2023-07-15T00:00:00Z"),
			Notes:       "Visited CN Tower and explored the vibrant downtown area.",
			Image:       "https://images.unsplash.com/photo-1517090504586-fde19ea6066f?w=800",
			Coordinates: Coordinates{Lat: 43.6532, Lng: -79.3832},
		},
		{
			ID:          "2",
			Name:        "Istanbul, Turkey",
			Date:        mustTime("2023-06-10T00:00:00Z"),
			Notes:       "Explored the Hagia Sophia and enjoyed amazing Turkish cuisine.",
			Image:       "https://images.unsplash.com/photo-1524231757912-21f4fe3a7200?w=800",
			Coordinates: Coordinates{Lat: 41.0082, Lng: 28.9784},
		},
		{
			ID:          "3",
			Name:        "San Juan del Sur, Nicaragua",
			Date:        mustTime("2023-05-05T00:00:00Z"),
			Notes:       "Relaxed on beautiful beaches and enjoyed the local seafood.",
			Image:       "https://images.unsplash.com/photo-1605216663980-b7ca6e9f2451?w=800",
			Coordinates: Coordinates{Lat: 11.2529, Lng: -85.8705},
		},
		{
			ID:          "4",
			Name:        "Rome, Italy",
			Date:        mustTime("2023-04-20T00:00:00Z"),
			Notes:       "Visited the Colosseum and enjoyed authentic Italian pizza and pasta.",
			Image:       "https://images.unsplash.com/photo-1552832230-c0197dd311b5?w=800",
			Coordinates: Coordinates{Lat: 41.9028, Lng: 12.4964},
		},
		{
			ID:          "5",
			Name:        "Zurich, Switzerland",
			Date:        mustTime("2023-03-15T00:00:00Z"),
			Notes:       "Enjoyed the pristine lakes and majestic Alps in this beautiful city.",
			Image:       "https://images.unsplash.com/photo-1515488764276-beab7607c1e6?w=800",
			Coordinates: Coordinates{Lat: 47.3769, Lng: 8.5417},
		},
		{
			ID:          "6",
			Name:        "Paris, France",
			Date:        mustTime("2023-02-10T00:00:00Z"),
			Notes:       "Visited the Eiffel Tower and explored the charming streets of Montmartre.",
			Image:       "https://images.unsplash.com/photo-1431274172761-fca41d930114?w=800",
			Coordinates: Coordinates{Lat: 48.8566, Lng: 2.3522},
		},
	}
}
